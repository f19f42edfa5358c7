//go:build !linux && !darwin && !windows

package runner

// currentThread has no thread id to offer; every thread looks the same.
func currentThread() uint64 { return 0 }
