package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyPresent is returned by AddBackend when the identity is
	// already registered. Callers typically remove and retry.
	ErrAlreadyPresent = errors.New("backend already present")

	// ErrNotFound is returned when an operation targets an identity
	// that is not currently registered.
	ErrNotFound = errors.New("backend not found")

	// ErrClosed is returned for operations on a dispatcher that has
	// been closed or has shut down fatally.
	ErrClosed = errors.New("dispatcher closed")

	// ErrRestartBudget indicates the rolling restart budget was
	// exhausted and the dispatch subsystem shut itself down. Recovery
	// requires restarting the hosting process.
	ErrRestartBudget = errors.New("backend restart budget exceeded")
)

// InitError wraps a failure reported by a backend's Init.
type InitError struct {
	Identity Identity
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("backend %s: init failed: %v", e.Identity, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// CrashError describes a backend panic caught during event delivery,
// a synchronous call, flush, or termination. The crashing backend is
// torn down; the error never propagates to log producers.
type CrashError struct {
	Identity Identity
	Reason   interface{}
	Stack    []byte
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("backend %s crashed: %v", e.Identity, e.Reason)
}
