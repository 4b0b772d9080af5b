package dispatch

import (
	"time"

	"github.com/philipp01105/logfan/backend"
)

// registry maintains the ordered set of active backend slots. It is
// owned by the dispatcher goroutine: all mutation happens through
// queue items, so no locking is needed.
type registry struct {
	slots []*slot // delivery order is registration order
	index map[Identity]*slot

	// rolling restart budget, shared across all slots
	maxRestarts   int
	restartWindow time.Duration
	restarts      []time.Time
}

func newRegistry(maxRestarts int, window time.Duration) *registry {
	return &registry{
		index:         make(map[Identity]*slot),
		maxRestarts:   maxRestarts,
		restartWindow: window,
	}
}

// add starts a backend in a new slot. It reports three outcomes the
// same way the backend's Init does: nil with registered=true on
// success, nil with registered=false when Init declined with
// backend.ErrIgnore, and an error otherwise.
func (r *registry) add(id Identity, b backend.Backend, initArgs map[string]interface{}, reserved bool) (registered bool, err error) {
	if _, ok := r.index[id]; ok {
		return false, ErrAlreadyPresent
	}

	s := &slot{id: id, b: b, initArgs: initArgs, reserved: reserved}
	if err := s.init(); err != nil {
		if err == backend.ErrIgnore {
			return false, nil
		}
		return false, &InitError{Identity: id, Err: err}
	}

	r.slots = append(r.slots, s)
	r.index[id] = s
	return true, nil
}

// remove terminates the slot and deletes its registration
func (r *registry) remove(id Identity, reason error) error {
	s, ok := r.index[id]
	if !ok {
		return ErrNotFound
	}
	s.terminate(reason)
	r.drop(s)
	return nil
}

// drop deletes a slot without invoking Terminate
func (r *registry) drop(s *slot) {
	delete(r.index, s.id)
	for i, cur := range r.slots {
		if cur == s {
			r.slots = append(r.slots[:i], r.slots[i+1:]...)
			break
		}
	}
}

// lookup returns the slot for id, or nil
func (r *registry) lookup(id Identity) *slot {
	return r.index[id]
}

// snapshot returns the slots in delivery order. The copy keeps the
// delivery loop stable while crash handling mutates the registry.
func (r *registry) snapshot() []*slot {
	out := make([]*slot, len(r.slots))
	copy(out, r.slots)
	return out
}

// charge records one crash-triggered restart or removal against the
// rolling budget. It returns false once the budget is exhausted, which
// is fatal for the whole dispatch subsystem.
func (r *registry) charge(now time.Time) bool {
	cutoff := now.Add(-r.restartWindow)
	kept := r.restarts[:0]
	for _, t := range r.restarts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.restarts = append(kept, now)
	return len(r.restarts) <= r.maxRestarts
}

// shutdown terminates every slot in reverse registration order
func (r *registry) shutdown(reason error) {
	for i := len(r.slots) - 1; i >= 0; i-- {
		r.slots[i].terminate(reason)
	}
	r.slots = nil
	r.index = make(map[Identity]*slot)
}
