package backend

import (
	"errors"
	"fmt"

	"github.com/philipp01105/logfan/core"
)

// Backend is a pluggable consumer of log events. Implementations are
// supplied by users of the dispatcher and are treated as black boxes:
// every method is invoked inside the dispatcher's delivery loop behind
// panic isolation, so a misbehaving backend can never take down its
// siblings or the dispatcher itself.
//
// Backends must not block indefinitely inside HandleEvent or
// HandleCall; a stalled backend stalls the whole delivery pipeline.
// This is a contract, not something the dispatcher enforces.
type Backend interface {
	// Init prepares the backend. The opts map carries the arguments
	// passed to AddBackend. Returning ErrIgnore declines startup
	// cleanly: the add succeeds but no registration is created. Any
	// other non-nil error fails the add.
	Init(opts map[string]interface{}) error

	// HandleEvent consumes one log event. The event is owned by the
	// dispatcher and recycled after delivery; implementations must not
	// retain it. A returned error is reported on the dispatcher's
	// diagnostic channel but does not remove the backend; a panic does.
	HandleEvent(ev *core.Event) error

	// HandleCall services a synchronous request routed through
	// ConfigureBackend. The reply and error are returned verbatim to
	// the caller. A panic tears the backend down.
	HandleCall(req interface{}) (interface{}, error)

	// Terminate releases resources. reason is nil on orderly removal
	// and carries the crash error when the backend is being torn down
	// after a panic.
	Terminate(reason error)
}

// Flusher is an optional interface for backends that buffer output.
// The dispatcher calls Flush when it drains a flush marker, and before
// a flush-aware add or remove.
type Flusher interface {
	Flush() error
}

// ErrIgnore is returned from Init by a backend that declines to start.
// The dispatcher treats it as success without creating a registration.
var ErrIgnore = errors.New("backend ignored")

// errUnsupported reports a HandleCall request a built-in backend does
// not understand.
func errUnsupported(req interface{}) error {
	return fmt.Errorf("unsupported call request %T", req)
}
