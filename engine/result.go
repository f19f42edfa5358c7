package engine

import "fmt"

// Result is the status code returned by every engine entry point.
type Result int32

const (
	Success Result = iota
	InvalidLibraryVersion
	InvalidArguments
	InternalInconsistency
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case InvalidLibraryVersion:
		return "invalid library version"
	case InvalidArguments:
		return "invalid arguments"
	case InternalInconsistency:
		return "internal inconsistency"
	default:
		return "unknown error"
	}
}

// ResultError is a non-success Result from the named entry point.
type ResultError struct {
	Op     string
	Result Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("flutter engine: %s: %s (%d)", e.Op, e.Result, int32(e.Result))
}

// Err returns nil for Success and a *ResultError otherwise.
func (r Result) Err(op string) error {
	if r == Success {
		return nil
	}
	return &ResultError{Op: op, Result: r}
}

// Check panics when r is not Success. Engine result codes signal a
// contract or version mismatch that the host cannot recover from.
func Check(op string, r Result) {
	if err := r.Err(op); err != nil {
		panic(err)
	}
}

// Must panics when err is non-nil.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
