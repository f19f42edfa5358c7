package runner

import "golang.org/x/sys/windows"

// currentThread returns the Win32 thread id.
func currentThread() uint64 { return uint64(windows.GetCurrentThreadId()) }
