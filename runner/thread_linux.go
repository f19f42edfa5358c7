package runner

import "golang.org/x/sys/unix"

// currentThread returns the kernel thread id.
func currentThread() uint64 { return uint64(unix.Gettid()) }
