// Package dispatch implements the overload-protected delivery engine
// at the center of logfan.
//
// A single goroutine drains a bounded queue and delivers each event to
// every registered backend in registration order. Backend management
// (add, remove, synchronous calls, threshold updates) travels through
// the same queue, so management operations are ordered relative to log
// events and Flush guarantees that everything posted before it has
// reached every backend.
//
// Producers are protected from slow backends by a three-mode
// backpressure machine derived from the live queue depth on every Log
// call:
//
//   - Normal: below SyncThreshold, enqueue and return
//   - Sync: at or above SyncThreshold, enqueue and block until the
//     event has been delivered, matching producer speed to dispatcher
//     throughput
//   - Discard: at or above DiscardThreshold, drop the event and count
//     it on a lock-free counter
//
// Discard is checked first, so DiscardThreshold at or below
// SyncThreshold degrades to always-discard rather than erroring.
//
// Every backend runs in a supervised slot. A panic in any backend
// callback is caught, reported on the dispatcher's zap diagnostic
// channel and tears down only that backend; producers never observe
// it. Crash-triggered teardowns are charged against a rolling restart
// budget (30 per 3 seconds across all slots by default); exhausting
// the budget shuts down the whole dispatch subsystem, leaving recovery
// to an outer supervisor. The reserved "config" slot hosting the
// overload thresholds is always present and is restarted in place when
// it crashes.
//
// A periodic reporter injects warning events when discarding begins
// and reports the dropped count when it ends. The warnings bypass the
// producer path so they cannot be discarded themselves.
package dispatch
