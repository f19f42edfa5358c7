package runner

import (
	"sync"

	"github.com/ebitengine/purego"
)

var (
	threadOnce sync.Once
	threadidNP func(thread uintptr, id *uint64) int32
)

// currentThread returns the Mach thread id from pthread_threadid_np.
func currentThread() uint64 {
	threadOnce.Do(func() {
		lib, err := purego.Dlopen("/usr/lib/libSystem.B.dylib", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			slogger().Warn("runner: libSystem unavailable", "err", err)
			return
		}
		purego.RegisterLibFunc(&threadidNP, lib, "pthread_threadid_np")
	})
	if threadidNP == nil {
		return 0
	}
	var id uint64
	if threadidNP(0, &id) != 0 {
		return 0
	}
	return id
}
