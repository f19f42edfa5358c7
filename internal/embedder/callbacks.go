package embedder

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/platformview"
)

// The engine hands user data back to every callback. It is an opaque
// handle into engines rather than a Go pointer, which C must not retain.
var (
	engines  sync.Map // uintptr -> *Engine
	lastUser atomic.Uintptr
)

// register gives e a fresh user data handle.
func register(e *Engine) uintptr {
	user := lastUser.Add(1)
	engines.Store(user, e)
	return user
}

func unregister(user uintptr) { engines.Delete(user) }

// lookup returns the engine behind user, or nil after unregister. Late
// callbacks during shutdown see nil and do nothing.
func lookup(user uintptr) *Engine {
	v, ok := engines.Load(user)
	if !ok {
		slogger().Error("embedder: callback for unknown engine", "user", user)
		return nil
	}
	return v.(*Engine)
}

// callbackTable holds the C entry points of the Go callbacks below. It is
// built once per process; see callTable.
type callbackTable struct {
	platformMessage         uintptr
	rootIsolateCreate       uintptr
	vsync                   uintptr
	logMessage              uintptr
	preEngineRestart        uintptr
	updateSemantics         uintptr
	runsTaskOnCurrentThread uintptr
	postTask                uintptr
	createBackingStore      uintptr
	collectBackingStore     uintptr
	presentLayers           uintptr
	destroyStore            uintptr
	instanceProcAddress     uintptr
	nextImage               uintptr
	presentImage            uintptr
	surfacePresent          uintptr
}

// boolResult converts ok to a C bool.
func boolResult(ok bool) uintptr {
	if ok {
		return 1
	}
	return 0
}

// onPlatformMessage copies the message out of engine memory before it is
// queued; the engine frees it when the callback returns.
func onPlatformMessage(msg, user uintptr) uintptr {
	e := lookup(user)
	if e == nil {
		return 0
	}
	m := (*platformMessage)(unsafe.Pointer(msg))
	e.host.HandlePlatformMessage(engine.PlatformMessage{
		Channel:  goString(uintptr(unsafe.Pointer(m.channel))),
		Message:  goBytes(uintptr(unsafe.Pointer(m.message)), m.messageSize),
		Response: engine.ResponseHandle(m.responseHandle),
	})
	return 0
}

func onRootIsolateCreate(user uintptr) uintptr {
	if e := lookup(user); e != nil {
		e.host.RootIsolateCreated()
	}
	return 0
}

func onVsync(user, baton uintptr) uintptr {
	if e := lookup(user); e != nil {
		e.host.RequestVsync(baton)
	}
	return 0
}

func onLogMessage(tag, message, user uintptr) uintptr {
	if e := lookup(user); e != nil {
		e.host.LogMessage(goString(tag), goString(message))
	}
	return 0
}

func onPreEngineRestart(user uintptr) uintptr {
	if e := lookup(user); e != nil {
		e.host.PreEngineRestart()
	}
	return 0
}

func onUpdateSemantics(update, user uintptr) uintptr {
	e := lookup(user)
	if e == nil || update == 0 {
		return 0
	}
	u := (*semanticsUpdate)(unsafe.Pointer(update))
	e.host.UpdateSemantics(int(u.nodesCount))
	return 0
}

// onRunsTaskOnCurrentThread reports whether the caller is the UI thread.
func onRunsTaskOnCurrentThread(user uintptr) uintptr {
	e := lookup(user)
	return boolResult(e != nil && e.host.RunsTasksOnCurrentThread())
}

// onPostTask receives the task split into its two words, which is how
// the System V and AArch64 conventions pass a 16 byte struct.
func onPostTask(runner, id, target, user uintptr) uintptr {
	if e := lookup(user); e != nil {
		e.host.PostTask(engine.Task{Runner: runner, ID: uint64(id)}, uint64(target))
	}
	return 0
}

// onPostTaskByRef receives the task by reference, as Windows x64 passes
// structs wider than a register.
func onPostTaskByRef(t, target, user uintptr) uintptr {
	tk := (*task)(unsafe.Pointer(t))
	return onPostTask(tk.runner, uintptr(tk.id), target, user)
}

// onCreateBackingStore fills out with the store the host allocated. The
// store id travels back to collect and present as user data.
func onCreateBackingStore(config, out, user uintptr) uintptr {
	e := lookup(user)
	if e == nil {
		return 0
	}
	c := (*backingStoreConfig)(unsafe.Pointer(config))
	bs, err := e.host.CreateBackingStore(engine.BackingStoreConfig{
		Width:  c.width,
		Height: c.height,
		ViewID: c.viewID,
	})
	if err != nil {
		slogger().Error("embedder: create backing store", "width", c.width, "height", c.height, "err", err)
		return 0
	}
	e.writeBackingStore(out, bs)
	return 1
}

// onCollectBackingStore frees the store named by the user data of store.
func onCollectBackingStore(store, user uintptr) uintptr {
	e := lookup(user)
	if e == nil {
		return 0
	}
	id := uint64((*backingStore)(unsafe.Pointer(store)).userData)
	e.release(id)
	if err := e.host.CollectBackingStore(id); err != nil {
		slogger().Error("embedder: collect backing store", "id", id, "err", err)
		return 0
	}
	return 1
}

// onPresentLayers decodes the frame and hands it to the host compositor.
func onPresentLayers(layers, count, user uintptr) uintptr {
	e := lookup(user)
	if e == nil {
		return 0
	}
	if err := e.host.PresentLayers(decodeLayers(layers, count)); err != nil {
		slogger().Error("embedder: present layers", "layers", count, "err", err)
		return 0
	}
	return 1
}

// onDestroyStore is the per-store destruction callback. Stores are
// released in onCollectBackingStore, so there is nothing left to do.
func onDestroyStore(uintptr) uintptr { return 0 }

func onInstanceProcAddress(user, instance, name uintptr) uintptr {
	e := lookup(user)
	if e == nil {
		return 0
	}
	return e.instanceProcAddress(instance, name)
}

// The window surface callbacks are only used without a compositor, which
// this host never configures. Reaching one is a contract violation.

func onNextImage(user, frameInfo uintptr) uintptr {
	unsupported("next image")
	return 0
}

func onPresentImage(user, image uintptr) uintptr {
	unsupported("present image")
	return 0
}

func onSurfacePresent(user, allocation, rowBytes, height uintptr) uintptr {
	unsupported("surface present")
	return 0
}

// unsupported logs and panics for a callback this host never configures.
func unsupported(callback string) {
	slogger().Error("embedder: unsupported callback", "callback", callback)
	panic(fmt.Sprintf("embedder: unsupported %s callback", callback))
}

// decodeLayers copies the engine's layer array. Mutation stacks are
// copied too; nothing returned points into engine memory.
func decodeLayers(layers, count uintptr) []engine.Layer {
	if layers == 0 || count == 0 {
		return nil
	}
	ptrs := unsafe.Slice((**layer)(unsafe.Pointer(layers)), count)
	out := make([]engine.Layer, 0, count)
	for _, l := range ptrs {
		dl := engine.Layer{
			Kind:   engine.LayerKind(l.kind),
			Offset: platformview.Point{X: l.offsetX, Y: l.offsetY},
			Size:   platformview.Size{Width: l.width, Height: l.height},
		}
		switch l.kind {
		case layerBackingStore:
			dl.BackingStore = uint64((*backingStore)(unsafe.Pointer(l.content)).userData)
		case layerPlatformView:
			pv := (*platformView)(unsafe.Pointer(l.content))
			dl.ViewID = pv.identifier
			dl.Mutations = decodeMutations(pv.mutations, pv.mutationsCount)
		}
		out = append(out, dl)
	}
	return out
}

// decodeMutations copies a platform view's mutation stack, outermost
// first.
func decodeMutations(mutations, count uintptr) []platformview.Mutation {
	if mutations == 0 || count == 0 {
		return nil
	}
	ptrs := unsafe.Slice((**mutation)(unsafe.Pointer(mutations)), count)
	out := make([]platformview.Mutation, 0, count)
	for _, m := range ptrs {
		d := &m.data
		pm := platformview.Mutation{Kind: platformview.MutationKind(m.kind)}
		switch pm.Kind {
		case platformview.MutationOpacity:
			pm.Opacity = d[0]
		case platformview.MutationClipRect:
			pm.ClipRect = platformview.Rect{Left: d[0], Top: d[1], Right: d[2], Bottom: d[3]}
		case platformview.MutationClipRoundedRect:
			pm.ClipRoundedRect = platformview.RoundedRect{
				Rect:       platformview.Rect{Left: d[0], Top: d[1], Right: d[2], Bottom: d[3]},
				UpperLeft:  platformview.Size{Width: d[4], Height: d[5]},
				UpperRight: platformview.Size{Width: d[6], Height: d[7]},
				LowerRight: platformview.Size{Width: d[8], Height: d[9]},
				LowerLeft:  platformview.Size{Width: d[10], Height: d[11]},
			}
		case platformview.MutationTransformation:
			pm.Transformation = platformview.Transformation{
				ScaleX: d[0], SkewX: d[1], TransX: d[2],
				SkewY: d[3], ScaleY: d[4], TransY: d[5],
				Pers0: d[6], Pers1: d[7], Pers2: d[8],
			}
		default:
			slogger().Warn("embedder: unknown mutation kind", "kind", m.kind)
			continue
		}
		out = append(out, pm)
	}
	return out
}
