//go:build (darwin || freebsd || linux) && (amd64 || arm64)

package embedder

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// openLibrary dlopens path with global symbols so the engine can resolve
// its own dependencies.
func openLibrary(path string) (uintptr, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("embedder: dlopen %s: %w", path, err)
	}
	return h, nil
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}

func closeLibrary(lib uintptr) error {
	return purego.Dlclose(lib)
}
