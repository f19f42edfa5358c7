//go:build (darwin || freebsd || linux || windows) && (amd64 || arm64)

package embedder

import (
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

func (l *Library) bind() error {
	for _, s := range l.symbols() {
		addr, err := lookupSymbol(l.handle, s.name)
		if err != nil || addr == 0 {
			if s.required {
				return missing(s.name)
			}
			slogger().Debug("embedder: optional symbol absent", "name", s.name)
			continue
		}
		purego.RegisterFunc(s.fn, addr)
	}
	return nil
}

var (
	callbacksOnce sync.Once
	callbacks     callbackTable
)

// callTable returns the C entry points of the engine callbacks. Callbacks
// can never be freed, so every engine in the process shares one set.
func callTable() *callbackTable {
	callbacksOnce.Do(func() {
		postTask := purego.NewCallback(onPostTask)
		if runtime.GOOS == "windows" && runtime.GOARCH == "amd64" {
			postTask = purego.NewCallback(onPostTaskByRef)
		}
		callbacks = callbackTable{
			platformMessage:         purego.NewCallback(onPlatformMessage),
			rootIsolateCreate:       purego.NewCallback(onRootIsolateCreate),
			vsync:                   purego.NewCallback(onVsync),
			logMessage:              purego.NewCallback(onLogMessage),
			preEngineRestart:        purego.NewCallback(onPreEngineRestart),
			updateSemantics:         purego.NewCallback(onUpdateSemantics),
			runsTaskOnCurrentThread: purego.NewCallback(onRunsTaskOnCurrentThread),
			postTask:                postTask,
			createBackingStore:      purego.NewCallback(onCreateBackingStore),
			collectBackingStore:     purego.NewCallback(onCollectBackingStore),
			presentLayers:           purego.NewCallback(onPresentLayers),
			destroyStore:            purego.NewCallback(onDestroyStore),
			instanceProcAddress:     purego.NewCallback(onInstanceProcAddress),
			nextImage:               purego.NewCallback(onNextImage),
			presentImage:            purego.NewCallback(onPresentImage),
			surfacePresent:          purego.NewCallback(onSurfacePresent),
		}
	})
	return &callbacks
}

// callProc calls a C function pointer taking two pointer-sized arguments.
func callProc(fn, a, b uintptr) uintptr {
	r, _, _ := purego.SyscallN(fn, a, b)
	return r
}
