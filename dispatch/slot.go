package dispatch

import (
	"runtime/debug"

	"github.com/philipp01105/logfan/backend"
	"github.com/philipp01105/logfan/core"
)

// Identity addresses a registered backend. Name alone is the common
// case; Tag distinguishes multiple instances of the same backend kind.
type Identity struct {
	Name string
	Tag  string
}

// String returns "name" or "name/tag"
func (id Identity) String() string {
	if id.Tag == "" {
		return id.Name
	}
	return id.Name + "/" + id.Tag
}

// slot supervises exactly one backend instance. It exclusively owns
// the backend's state: every callback runs through the slot behind
// panic isolation, so a crash surfaces as a *CrashError instead of
// unwinding the dispatcher.
type slot struct {
	id       Identity
	b        backend.Backend
	initArgs map[string]interface{}
	reserved bool // the config slot: restarted in place, never removed
}

// handleEvent delivers one event. The returned error is either the
// backend's own (reported, backend stays) or a *CrashError (backend is
// torn down by the caller).
func (s *slot) handleEvent(ev *core.Event) (err error) {
	defer s.trap(&err)
	return s.b.HandleEvent(ev)
}

// handleCall forwards a synchronous request and its reply
func (s *slot) handleCall(req interface{}) (res interface{}, err error) {
	defer s.trap(&err)
	return s.b.HandleCall(req)
}

// flush drains the backend's buffered output when it supports it
func (s *slot) flush() (err error) {
	defer s.trap(&err)
	if f, ok := s.b.(backend.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// init runs the backend's Init with the slot's registration arguments
func (s *slot) init() (err error) {
	defer s.trap(&err)
	return s.b.Init(s.initArgs)
}

// terminate shuts the backend down. A panic during Terminate is
// swallowed; the slot is going away either way.
func (s *slot) terminate(reason error) {
	defer func() { recover() }()
	s.b.Terminate(reason)
}

// trap converts a panic in a backend callback into a *CrashError
func (s *slot) trap(err *error) {
	if r := recover(); r != nil {
		*err = &CrashError{Identity: s.id, Reason: r, Stack: debug.Stack()}
	}
}
