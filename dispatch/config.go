package dispatch

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/philipp01105/logfan/core"
)

// Default threshold values applied when an Options field is left unset
// at construction time.
const (
	DefaultSyncThreshold    = 20
	DefaultDiscardThreshold = 500
	DefaultTruncateLimit    = 8192
)

// Options carries a partial update of the runtime thresholds. Nil
// fields keep their previous value, so any subset can be replaced
// atomically. Use the Int and Bool helpers to build literals.
type Options struct {
	// SyncThreshold is the queue depth at which producers start
	// blocking until their event is drained.
	SyncThreshold *int
	// DiscardThreshold is the queue depth at which events are dropped
	// and counted instead of enqueued.
	DiscardThreshold *int
	// TruncateLimit caps the message size in bytes; negative means
	// unlimited.
	TruncateLimit *int
	// UTC converts event timestamps to UTC at the entry point.
	UTC *bool
}

// Int returns a pointer to v, for building Options literals
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for building Options literals
func Bool(v bool) *bool { return &v }

// settings is an immutable snapshot of the current thresholds
type settings struct {
	syncThreshold    int
	discardThreshold int
	truncateLimit    int
	utc              bool
}

// Config holds the mutable runtime thresholds and the discard counter.
// Producers read a snapshot on every Log call without locking; Set
// replaces the snapshot atomically.
type Config struct {
	mu        sync.Mutex   // serializes writers in Set
	current   atomic.Value // settings
	discarded uint64       // lock-free discard counter
}

// NewConfig creates a Config with the given initial options; unset
// fields fall back to the package defaults.
func NewConfig(opts Options) *Config {
	c := &Config{}
	s := settings{
		syncThreshold:    DefaultSyncThreshold,
		discardThreshold: DefaultDiscardThreshold,
		truncateLimit:    DefaultTruncateLimit,
	}
	c.current.Store(apply(s, opts))
	return c
}

func apply(s settings, opts Options) settings {
	if opts.SyncThreshold != nil {
		s.syncThreshold = *opts.SyncThreshold
	}
	if opts.DiscardThreshold != nil {
		s.discardThreshold = *opts.DiscardThreshold
	}
	if opts.TruncateLimit != nil {
		s.truncateLimit = *opts.TruncateLimit
	}
	if opts.UTC != nil {
		s.utc = *opts.UTC
	}
	return s
}

// Set atomically replaces the subset of thresholds carried by opts.
// It always succeeds.
func (c *Config) Set(opts Options) {
	c.mu.Lock()
	c.current.Store(apply(c.snapshot(), opts))
	c.mu.Unlock()
}

func (c *Config) snapshot() settings {
	return c.current.Load().(settings)
}

// ModeFor derives the overload mode for the given queue depth. Discard
// is checked first, so a discard threshold at or below the sync
// threshold degrades to always-discard instead of erroring.
func (c *Config) ModeFor(depth int) Mode {
	s := c.snapshot()
	switch {
	case depth >= s.discardThreshold:
		return Discard
	case depth >= s.syncThreshold:
		return Sync
	default:
		return Normal
	}
}

// RecordDiscard counts one event dropped in Discard mode. Safe under
// concurrent producers.
func (c *Config) RecordDiscard() {
	atomic.AddUint64(&c.discarded, 1)
}

// DrainDiscards atomically reads and resets the discard counter. It is
// called once per reporter tick.
func (c *Config) DrainDiscards() uint64 {
	return atomic.SwapUint64(&c.discarded, 0)
}

// Discarded returns the current discard count without resetting it
func (c *Config) Discarded() uint64 {
	return atomic.LoadUint64(&c.discarded)
}

// TruncateLimit returns the current message size cap in bytes
func (c *Config) TruncateLimit() int {
	return c.snapshot().truncateLimit
}

// UTC reports whether event timestamps are converted to UTC
func (c *Config) UTC() bool {
	return c.snapshot().utc
}

// ConfigIdentity is the reserved identity of the slot hosting the
// overload Config. It is always registered, survives crashes by being
// restarted in place, and cannot be added or removed by callers.
var ConfigIdentity = Identity{Name: "config"}

// configBackend adapts Config to the Backend contract so the overload
// tracker lives in an ordinary supervised slot, addressable through
// the same synchronous call path as user backends.
type configBackend struct {
	cfg *Config
}

func (b *configBackend) Init(map[string]interface{}) error { return nil }

func (b *configBackend) HandleEvent(*core.Event) error { return nil }

func (b *configBackend) HandleCall(req interface{}) (interface{}, error) {
	opts, ok := req.(Options)
	if !ok {
		return nil, fmt.Errorf("unsupported config request %T", req)
	}
	b.cfg.Set(opts)
	return nil, nil
}

func (b *configBackend) Terminate(error) {}
