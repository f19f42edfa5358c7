package main

import (
	"log/slog"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost"
	"github.com/gogpu/flutterhost/compositor"
	"github.com/gogpu/flutterhost/config"
	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/internal/embedder"
	"github.com/gogpu/flutterhost/keymap"
	"github.com/gogpu/flutterhost/platformview"
)

// host ties the gogpu window to the Application. The engine is started on
// the first frame, once the window has a GPU device, and its queued work
// is drained on every frame after that.
type host struct {
	window *gogpu.App
	cfg    *config.Config
	bundle flutterhost.Bundle
	lib    *embedder.Library
	clear  [4]float64
	views  *platformview.Registry

	anim   *gogpu.AnimationToken
	comp   *compositor.Compositor
	app    *flutterhost.Application
	engine *embedder.Engine
	aot    *embedder.AOTData

	// Last mouse position in logical pixels, for wheel events that carry
	// none.
	mx, my float64

	stopped bool
	err     error
}

func (h *host) draw(dc *gogpu.Context) {
	if h.stopped {
		return
	}
	if h.app == nil {
		if h.anim == nil {
			h.anim = h.window.StartAnimation()
		}
		if err := h.start(dc); err != nil {
			h.stop(err)
			return
		}
		if h.app == nil {
			return
		}
	}
	select {
	case <-h.app.Done():
		h.stop(h.app.Err())
		return
	default:
	}
	h.app.Drain()
}

// start builds the compositor and the engine. It leaves h.app nil when the
// window has no GPU device yet.
func (h *host) start(dc *gogpu.Context) error {
	provider := h.window.GPUContextProvider()
	if provider == nil {
		return nil
	}
	device, queue, surface, err := halObjects(provider, h.window)
	if err != nil {
		return err
	}

	vk := vulkanHandles(device)
	opts := []compositor.Option{
		compositor.WithClearColor(h.clear),
		compositor.WithPlatformViews(h.views),
	}
	if vk == nil {
		slog.Info("flutterhost: Vulkan handles unavailable, using the software renderer")
		opts = append(opts, compositor.WithSoftwareStores())
	}
	if h.comp, err = compositor.New(device, queue, surface, opts...); err != nil {
		return err
	}

	scale := h.scale()
	width, height := h.size(dc, scale)
	appOpts := append(flutterhost.ConfigOptions(h.cfg),
		flutterhost.WithPlatformViews(h.views),
		flutterhost.WithDisplay(engine.Display{
			Single:           true,
			RefreshRate:      h.cfg.Window.RefreshRate,
			Width:            uint64(width),
			Height:           uint64(height),
			DevicePixelRatio: scale,
		}),
	)
	if p, ok := any(h.window).(gpucontext.PlatformProvider); ok {
		appOpts = append(appOpts, flutterhost.WithPlatform(p))
	}
	if ime, ok := any(h.window).(gpucontext.IMEController); ok {
		appOpts = append(appOpts, flutterhost.WithIME(ime))
	}
	app := flutterhost.New(h.comp, appOpts...)

	if h.bundle.AOTLibrary != "" {
		if h.aot, err = h.lib.CreateAOTData(h.bundle.AOTLibrary); err != nil {
			return err
		}
	}
	h.engine, err = h.lib.Initialize(embedder.Args{
		AssetsPath:  h.bundle.Assets,
		ICUDataPath: h.bundle.ICUData,
		CachePath:   h.bundle.CacheDir,
		Switches:    h.bundle.Flags,
		AOT:         h.aot,
		Vulkan:      vk,
		LogTag:      "flutter",
	}, app)
	if err != nil {
		return err
	}
	app.Attach(h.engine)
	h.app = app
	h.wireInput()
	return app.Start(width, height, scale)
}

func (h *host) scale() float64 {
	if wp, ok := any(h.window).(gpucontext.WindowProvider); ok {
		if s := wp.ScaleFactor(); s > 0 {
			return s
		}
	}
	return 1
}

// size returns the window size in physical pixels.
func (h *host) size(dc *gogpu.Context, scale float64) (int, int) {
	if wp, ok := any(h.window).(gpucontext.WindowProvider); ok {
		w, ht := wp.Size()
		return int(float64(w) * scale), int(float64(ht) * scale)
	}
	return dc.Width(), dc.Height()
}

func (h *host) wireInput() {
	app := h.app
	src := h.window.EventSource()

	src.OnKeyPress(app.KeyPress)
	src.OnKeyRelease(app.KeyRelease)
	src.OnTextInput(app.TextInput)
	src.OnFocus(app.Focus)
	src.OnIMECompositionUpdate(app.IMECompose)
	src.OnIMECompositionEnd(app.IMECommit)
	src.OnResize(func(w, ht int) {
		s := h.scale()
		app.MetricsChanged(int(float64(w)*s), int(float64(ht)*s), s, 0, 0)
	})

	if ps, ok := src.(gpucontext.PointerEventSource); ok {
		ps.OnPointer(func(ev gpucontext.PointerEvent) {
			h.mx, h.my = ev.X, ev.Y
			app.Pointer(ev)
		})
	} else {
		mouse := func(typ gpucontext.PointerEventType, b gpucontext.Button, x, y float64) {
			h.mx, h.my = x, y
			app.Pointer(gpucontext.PointerEvent{
				Type:        typ,
				PointerID:   1,
				X:           x,
				Y:           y,
				Button:      b,
				PointerType: gpucontext.PointerTypeMouse,
			})
		}
		src.OnMouseMove(func(x, y float64) { mouse(gpucontext.PointerMove, gpucontext.ButtonNone, x, y) })
		src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
			mouse(gpucontext.PointerDown, keymap.MouseButton(b), x, y)
		})
		src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
			mouse(gpucontext.PointerUp, keymap.MouseButton(b), x, y)
		})
	}

	if ss, ok := src.(gpucontext.ScrollEventSource); ok {
		ss.OnScrollEvent(app.Scroll)
	} else {
		src.OnScroll(func(dx, dy float64) {
			app.Scroll(gpucontext.ScrollEvent{X: h.mx, Y: h.my, DeltaX: dx, DeltaY: dy, DeltaMode: gpucontext.ScrollDeltaLine})
		})
	}
}

func (h *host) stop(err error) {
	if err != nil && h.err == nil {
		h.err = err
	}
	h.stopped = true
	h.window.Quit()
}

// close runs on window close. The engine must stop before the compositor
// releases the stores it renders into.
func (h *host) close() {
	if h.anim != nil {
		h.anim.Stop()
	}
	if h.app != nil {
		if err := h.app.Shutdown(); err != nil && h.err == nil {
			h.err = err
		}
	} else if h.aot != nil {
		_ = h.aot.Close()
	}
	if h.comp != nil {
		h.comp.Destroy()
	}
}
