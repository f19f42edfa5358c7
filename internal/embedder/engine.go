package embedder

import (
	"errors"
	"runtime"
	"sync"
	"unsafe"

	"github.com/gogpu/flutterhost/engine"
)

// ErrShutdown reports a call on an engine that was shut down.
var ErrShutdown = errors.New("embedder: engine is shut down")

// programName stands in for argv[0], which the engine skips.
const programName = "flutterhost"

// Args are the project settings for Initialize.
type Args struct {
	AssetsPath  string
	ICUDataPath string
	// CachePath is the persistent cache directory. Empty disables it.
	CachePath string
	// Switches are engine command line switches such as
	// --observatory-port=0.
	Switches []string

	// Entrypoint names the Dart entrypoint. Empty means main.
	Entrypoint     string
	EntrypointArgs []string

	// AOT is required by release and profile engines. The engine takes
	// ownership and collects it on Shutdown.
	AOT *AOTData

	// Vulkan selects the Vulkan renderer. Nil selects the software
	// renderer; the host compositor must then hand out software stores.
	Vulkan *engine.Vulkan

	LogTag string
}

// Engine is an initialized engine instance. It implements engine.Engine.
type Engine struct {
	lib  *Library
	host engine.Host
	user uintptr
	raw  uintptr
	aot  *AOTData

	getInstanceProcAddr uintptr

	// pinned keeps the structures handed to Initialize reachable.
	pinned []any

	mu     sync.Mutex
	stores map[uint64]any
	closed bool
}

var _ engine.Engine = (*Engine)(nil)

// Initialize creates an engine for host without running it. Callbacks
// start arriving once Run is called.
func (l *Library) Initialize(args Args, host engine.Host) (*Engine, error) {
	cb := callTable()
	e := &Engine{
		lib:    l,
		host:   host,
		aot:    args.AOT,
		stores: make(map[uint64]any),
	}
	e.user = register(e)

	var (
		renderer unsafe.Pointer
		err      error
	)
	if args.Vulkan != nil {
		renderer, err = e.vulkanRenderer(args.Vulkan, cb)
		if err != nil {
			unregister(e.user)
			return nil, err
		}
	} else {
		renderer = e.softwareRenderer(cb)
	}

	runner := &taskRunnerDescription{
		structSize:              unsafe.Sizeof(taskRunnerDescription{}),
		userData:                e.user,
		runsTaskOnCurrentThread: cb.runsTaskOnCurrentThread,
		postTask:                cb.postTask,
		identifier:              1,
	}
	runners := &customTaskRunners{
		structSize: unsafe.Sizeof(customTaskRunners{}),
		platform:   runner,
		render:     runner,
	}
	compositor := &compositorConfig{
		structSize:          unsafe.Sizeof(compositorConfig{}),
		userData:            e.user,
		createBackingStore:  cb.createBackingStore,
		collectBackingStore: cb.collectBackingStore,
		presentLayers:       cb.presentLayers,
	}
	argv, argc := cstrArray(append([]string{programName}, args.Switches...))
	entryArgv, entryArgc := cstrArray(args.EntrypointArgs)

	pa := &projectArgs{
		structSize:                 unsafe.Sizeof(projectArgs{}),
		assetsPath:                 cstr(args.AssetsPath),
		icuDataPath:                cstr(args.ICUDataPath),
		commandLineArgc:            int32(argc),
		commandLineArgv:            argv,
		platformMessageCallback:    cb.platformMessage,
		rootIsolateCreateCallback:  cb.rootIsolateCreate,
		persistentCachePath:        cstrOrNil(args.CachePath),
		vsyncCallback:              cb.vsync,
		customDartEntrypoint:       cstrOrNil(args.Entrypoint),
		customTaskRunners:          runners,
		shutdownDartVMWhenDone:     true,
		compositor:                 compositor,
		dartOldGenHeapSize:         -1,
		dartEntrypointArgc:         int32(entryArgc),
		dartEntrypointArgv:         entryArgv,
		logMessageCallback:         cb.logMessage,
		logTag:                     cstrOrNil(args.LogTag),
		onPreEngineRestartCallback: cb.preEngineRestart,
		updateSemanticsCallback2:   cb.updateSemantics,
	}
	if args.AOT != nil {
		pa.aotData = args.AOT.raw
	}

	var raw uintptr
	r := engine.Result(l.initialize(engineVersion, renderer, pa, e.user, &raw))
	e.pinned = []any{renderer, pa, runners, runner, compositor}
	if err := r.Err("FlutterEngineInitialize"); err != nil {
		unregister(e.user)
		return nil, err
	}
	e.raw = raw
	slogger().Debug("embedder: engine initialized", "assets", args.AssetsPath, "vulkan", args.Vulkan != nil)
	return e, nil
}

// check returns ErrShutdown once the engine has been shut down.
func (e *Engine) check() error {
	if e.raw == 0 {
		return ErrShutdown
	}
	return nil
}

// Run starts the engine. The root isolate launches from here.
func (e *Engine) Run() error {
	if err := e.check(); err != nil {
		return err
	}
	return engine.Result(e.lib.runInitialized(e.raw)).Err("FlutterEngineRunInitialized")
}

// Shutdown stops the engine and releases everything it referenced. It is
// safe to call more than once.
func (e *Engine) Shutdown() error {
	if e.raw == 0 {
		return nil
	}
	err := engine.Result(e.lib.shutdown(e.raw)).Err("FlutterEngineShutdown")
	e.raw = 0
	unregister(e.user)
	e.mu.Lock()
	e.closed = true
	clear(e.stores)
	e.mu.Unlock()
	e.pinned = nil
	if aerr := e.aot.Close(); aerr != nil && err == nil {
		err = aerr
	}
	return err
}

func (e *Engine) SendWindowMetricsEvent(m engine.WindowMetrics) error {
	if err := e.check(); err != nil {
		return err
	}
	ev := &windowMetricsEvent{
		structSize: unsafe.Sizeof(windowMetricsEvent{}),
		width:      uintptr(m.Width),
		height:     uintptr(m.Height),
		pixelRatio: m.PixelRatio,
		left:       uintptr(m.Left),
		top:        uintptr(m.Top),
		displayID:  m.DisplayID,
		viewID:     m.ViewID,
	}
	r := engine.Result(e.lib.sendWindowMetricsEvent(e.raw, ev))
	runtime.KeepAlive(ev)
	return r.Err("FlutterEngineSendWindowMetricsEvent")
}

func (e *Engine) SendPointerEvents(events []engine.PointerEvent) error {
	if err := e.check(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	evs := make([]pointerEvent, len(events))
	for i, p := range events {
		evs[i] = pointerEvent{
			structSize:   unsafe.Sizeof(pointerEvent{}),
			phase:        int32(p.Phase),
			timestamp:    uintptr(p.Timestamp),
			x:            p.X,
			y:            p.Y,
			device:       p.Device,
			signalKind:   int32(p.SignalKind),
			scrollDeltaX: p.ScrollDeltaX,
			scrollDeltaY: p.ScrollDeltaY,
			deviceKind:   int32(p.DeviceKind),
			buttons:      p.Buttons,
			scale:        1,
			viewID:       p.ViewID,
		}
	}
	r := engine.Result(e.lib.sendPointerEvent(e.raw, &evs[0], uintptr(len(evs))))
	runtime.KeepAlive(evs)
	return r.Err("FlutterEngineSendPointerEvent")
}

func (e *Engine) SendKeyEvent(k engine.KeyEvent) error {
	if err := e.check(); err != nil {
		return err
	}
	ev := &keyEvent{
		structSize:  unsafe.Sizeof(keyEvent{}),
		timestamp:   k.Timestamp,
		kind:        int32(k.Type),
		physical:    k.Physical,
		logical:     k.Logical,
		character:   cstrOrNil(k.Character),
		synthesized: k.Synthesized,
		deviceType:  keyboardDeviceType,
	}
	r := engine.Result(e.lib.sendKeyEvent(e.raw, ev, 0, 0))
	runtime.KeepAlive(ev)
	return r.Err("FlutterEngineSendKeyEvent")
}

func (e *Engine) SendPlatformMessage(channel string, message []byte) error {
	if err := e.check(); err != nil {
		return err
	}
	msg := &platformMessage{
		structSize:  unsafe.Sizeof(platformMessage{}),
		channel:     cstr(channel),
		messageSize: uintptr(len(message)),
	}
	if len(message) > 0 {
		msg.message = &message[0]
	}
	r := engine.Result(e.lib.sendPlatformMessage(e.raw, msg))
	runtime.KeepAlive(msg)
	runtime.KeepAlive(message)
	return r.Err("FlutterEngineSendPlatformMessage")
}

func (e *Engine) SendPlatformMessageResponse(h engine.ResponseHandle, data []byte) error {
	if err := e.check(); err != nil {
		return err
	}
	var p *byte
	if len(data) > 0 {
		p = &data[0]
	}
	r := engine.Result(e.lib.sendPlatformMessageResponse(e.raw, uintptr(h), p, uintptr(len(data))))
	runtime.KeepAlive(data)
	return r.Err("FlutterEngineSendPlatformMessageResponse")
}

// ScheduleFrame is a no-op on engines that predate it.
func (e *Engine) ScheduleFrame() error {
	if err := e.check(); err != nil {
		return err
	}
	if e.lib.scheduleFrame == nil {
		return nil
	}
	return engine.Result(e.lib.scheduleFrame(e.raw)).Err("FlutterEngineScheduleFrame")
}

func (e *Engine) OnVsync(baton uintptr, frameStartNanos, frameTargetNanos uint64) error {
	if err := e.check(); err != nil {
		return err
	}
	return engine.Result(e.lib.onVsync(e.raw, baton, frameStartNanos, frameTargetNanos)).Err("FlutterEngineOnVsync")
}

func (e *Engine) RunTask(t engine.Task) error {
	if err := e.check(); err != nil {
		return err
	}
	tk := &task{runner: t.Runner, id: t.ID}
	r := engine.Result(e.lib.runTask(e.raw, tk))
	runtime.KeepAlive(tk)
	return r.Err("FlutterEngineRunTask")
}

// UpdateLocales sends the preferred locales, most preferred first. It is a
// no-op on engines that predate it.
func (e *Engine) UpdateLocales(locales []engine.Locale) error {
	if err := e.check(); err != nil {
		return err
	}
	if e.lib.updateLocales == nil || len(locales) == 0 {
		return nil
	}
	ptrs := make([]*locale, len(locales))
	for i, l := range locales {
		ptrs[i] = &locale{
			structSize:   unsafe.Sizeof(locale{}),
			languageCode: cstr(l.LanguageCode),
			countryCode:  cstrOrNil(l.CountryCode),
			scriptCode:   cstrOrNil(l.ScriptCode),
			variantCode:  cstrOrNil(l.VariantCode),
		}
	}
	r := engine.Result(e.lib.updateLocales(e.raw, &ptrs[0], uintptr(len(ptrs))))
	runtime.KeepAlive(ptrs)
	return r.Err("FlutterEngineUpdateLocales")
}

// NotifyDisplayUpdate reports the startup display set. It is a no-op on
// engines that predate it.
func (e *Engine) NotifyDisplayUpdate(displays []engine.Display) error {
	if err := e.check(); err != nil {
		return err
	}
	if e.lib.notifyDisplayUpdate == nil || len(displays) == 0 {
		return nil
	}
	ds := make([]engineDisplay, len(displays))
	for i, d := range displays {
		ds[i] = engineDisplay{
			structSize:       unsafe.Sizeof(engineDisplay{}),
			displayID:        d.ID,
			singleDisplay:    d.Single,
			refreshRate:      d.RefreshRate,
			width:            uintptr(d.Width),
			height:           uintptr(d.Height),
			devicePixelRatio: d.DevicePixelRatio,
		}
	}
	r := engine.Result(e.lib.notifyDisplayUpdate(e.raw, displaysUpdateStartup, &ds[0], uintptr(len(ds))))
	runtime.KeepAlive(ds)
	return r.Err("FlutterEngineNotifyDisplayUpdate")
}

func (e *Engine) CurrentTime() uint64 { return e.lib.CurrentTime() }

// writeBackingStore fills the engine-owned store at out for bs and keeps
// the Go memory it references alive until the store is collected.
func (e *Engine) writeBackingStore(out uintptr, bs engine.BackingStore) {
	hdr := (*backingStore)(unsafe.Pointer(out))
	hdr.userData = uintptr(bs.ID)
	hdr.didUpdate = true
	member := unsafe.Pointer(out + backingStoreUnion)

	var keep any
	if bs.Software() {
		hdr.kind = backingStoreSoftware
		*(*softwareBackingStore)(member) = softwareBackingStore{
			structSize:          unsafe.Sizeof(softwareBackingStore{}),
			allocation:          uintptr(unsafe.Pointer(&bs.Pixels[0])),
			rowBytes:            uintptr(bs.RowBytes),
			height:              uintptr(uint64(len(bs.Pixels)) / bs.RowBytes),
			userData:            uintptr(bs.ID),
			destructionCallback: callTable().destroyStore,
		}
		keep = bs.Pixels
	} else {
		img := &vulkanImage{
			structSize: unsafe.Sizeof(vulkanImage{}),
			image:      bs.Image,
			format:     bs.Format,
		}
		hdr.kind = backingStoreVulkan
		*(*vulkanBackingStore)(member) = vulkanBackingStore{
			structSize:          unsafe.Sizeof(vulkanBackingStore{}),
			image:               uintptr(unsafe.Pointer(img)),
			userData:            uintptr(bs.ID),
			destructionCallback: callTable().destroyStore,
		}
		keep = img
	}
	e.mu.Lock()
	if !e.closed {
		e.stores[bs.ID] = keep
	}
	e.mu.Unlock()
}

// release lets go of the Go memory kept alive for store id.
func (e *Engine) release(id uint64) {
	e.mu.Lock()
	delete(e.stores, id)
	e.mu.Unlock()
}
