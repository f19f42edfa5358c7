//go:build windows && (amd64 || arm64)

package embedder

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// openLibrary loads the DLL at path.
func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, fmt.Errorf("embedder: LoadLibrary %s: %w", path, err)
	}
	return uintptr(h), nil
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}

func closeLibrary(lib uintptr) error {
	return windows.FreeLibrary(windows.Handle(lib))
}
