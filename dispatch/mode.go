package dispatch

// Mode governs how a producer's Log call behaves under load. It is
// derived from the live queue depth on every call and never stored,
// so each producer independently observes the current depth without
// any shared state machine.
type Mode int

const (
	// Normal enqueues and returns immediately (fire-and-forget)
	Normal Mode = iota
	// Sync enqueues and blocks the producer until the event is drained
	Sync
	// Discard drops the event and counts it
	Discard
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case Normal:
		return "Normal"
	case Sync:
		return "Sync"
	case Discard:
		return "Discard"
	default:
		return "Unknown"
	}
}
