//go:build !((darwin || freebsd || linux || windows) && (amd64 || arm64))

package embedder

func openLibrary(string) (uintptr, error) { return 0, ErrUnsupported }

func lookupSymbol(uintptr, string) (uintptr, error) { return 0, ErrUnsupported }

func closeLibrary(uintptr) error { return nil }

func (l *Library) bind() error { return ErrUnsupported }

func callTable() *callbackTable { return &callbackTable{} }

func callProc(uintptr, uintptr, uintptr) uintptr { return 0 }
