package embedder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"
)

// ErrUnsupported reports a platform without a cgo-free binding.
var ErrUnsupported = errors.New("embedder: platform not supported")

// ErrMissingSymbol reports an engine library without a required entry point.
var ErrMissingSymbol = errors.New("embedder: missing symbol")

// LibraryEnv names the environment variable that overrides the engine
// library search.
const LibraryEnv = "FLUTTER_ENGINE_LIBRARY"

// DefaultLibraryName returns the platform file name of the engine library.
func DefaultLibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libflutter_engine.dylib"
	case "windows":
		return "flutter_engine.dll"
	default:
		return "libflutter_engine.so"
	}
}

// Library is a loaded engine shared library with its entry points bound.
type Library struct {
	path   string
	handle uintptr

	initialize                  func(version uintptr, config unsafe.Pointer, args *projectArgs, userData uintptr, out *uintptr) int32
	runInitialized              func(engine uintptr) int32
	shutdown                    func(engine uintptr) int32
	sendWindowMetricsEvent      func(engine uintptr, event *windowMetricsEvent) int32
	sendPointerEvent            func(engine uintptr, events *pointerEvent, count uintptr) int32
	sendKeyEvent                func(engine uintptr, event *keyEvent, callback, userData uintptr) int32
	sendPlatformMessage         func(engine uintptr, msg *platformMessage) int32
	sendPlatformMessageResponse func(engine, handle uintptr, data *byte, size uintptr) int32
	onVsync                     func(engine, baton uintptr, start, target uint64) int32
	runTask                     func(engine uintptr, t *task) int32
	getCurrentTime              func() uint64

	// Optional entry points missing from older engines.
	scheduleFrame           func(engine uintptr) int32
	updateLocales           func(engine uintptr, locales **locale, count uintptr) int32
	notifyDisplayUpdate     func(engine uintptr, kind int32, displays *engineDisplay, count uintptr) int32
	createAOTData           func(src *aotDataSource, out *uintptr) int32
	collectAOTData          func(data uintptr) int32
	runsAOTCompiledDartCode func() bool
}

// Open loads the engine library at path and binds its entry points. An
// empty path consults LibraryEnv, then looks next to the executable and
// finally defers to the system loader.
func Open(path string) (*Library, error) {
	if path == "" {
		path = findLibrary()
	}
	h, err := openLibrary(path)
	if err != nil {
		return nil, err
	}
	l := &Library{path: path, handle: h}
	if err := l.bind(); err != nil {
		_ = closeLibrary(h)
		return nil, err
	}
	slogger().Debug("embedder: library loaded", "path", path)
	return l, nil
}

// findLibrary returns LibraryEnv when set. Otherwise it looks for the
// engine library next to the executable, in its lib directory and in the
// working directory, falling back to the bare name for the loader search
// path.
func findLibrary() string {
	if p := os.Getenv(LibraryEnv); p != "" {
		return p
	}
	name := DefaultLibraryName()
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, name),
			filepath.Join(dir, "lib", name),
		)
	}
	candidates = append(candidates, name)
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			if abs, err := filepath.Abs(c); err == nil {
				return abs
			}
			return c
		}
	}
	return name
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string { return l.path }

// CurrentTime returns the engine clock in nanoseconds.
func (l *Library) CurrentTime() uint64 { return l.getCurrentTime() }

// RunsAOTCompiledDartCode reports whether the library is a release or
// profile build that needs AOT data.
func (l *Library) RunsAOTCompiledDartCode() bool {
	if l.runsAOTCompiledDartCode == nil {
		return false
	}
	return l.runsAOTCompiledDartCode()
}

// Close unloads the library. Engines created from it must be shut down.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := closeLibrary(l.handle)
	l.handle = 0
	return err
}

// symbols lists every entry point bind resolves, with its destination.
func (l *Library) symbols() []symbol {
	return []symbol{
		{"FlutterEngineInitialize", &l.initialize, true},
		{"FlutterEngineRunInitialized", &l.runInitialized, true},
		{"FlutterEngineShutdown", &l.shutdown, true},
		{"FlutterEngineSendWindowMetricsEvent", &l.sendWindowMetricsEvent, true},
		{"FlutterEngineSendPointerEvent", &l.sendPointerEvent, true},
		{"FlutterEngineSendKeyEvent", &l.sendKeyEvent, true},
		{"FlutterEngineSendPlatformMessage", &l.sendPlatformMessage, true},
		{"FlutterEngineSendPlatformMessageResponse", &l.sendPlatformMessageResponse, true},
		{"FlutterEngineOnVsync", &l.onVsync, true},
		{"FlutterEngineRunTask", &l.runTask, true},
		{"FlutterEngineGetCurrentTime", &l.getCurrentTime, true},
		{"FlutterEngineScheduleFrame", &l.scheduleFrame, false},
		{"FlutterEngineUpdateLocales", &l.updateLocales, false},
		{"FlutterEngineNotifyDisplayUpdate", &l.notifyDisplayUpdate, false},
		{"FlutterEngineCreateAOTData", &l.createAOTData, false},
		{"FlutterEngineCollectAOTData", &l.collectAOTData, false},
		{"FlutterEngineRunsAOTCompiledDartCode", &l.runsAOTCompiledDartCode, false},
	}
}

// symbol pairs an exported name with the function variable bound to it.
type symbol struct {
	name     string
	fn       any
	required bool
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingSymbol, name)
}
