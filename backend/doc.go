// Package backend defines the contract between the dispatcher and its
// pluggable event consumers, plus the built-in implementations.
//
// A Backend implements Init, HandleEvent, HandleCall, and Terminate.
// All four run inside the dispatcher's delivery loop behind panic
// isolation: a panic tears down only the offending backend, while a
// returned error is reported on the diagnostic channel and leaves the
// backend registered. Backends that buffer output also implement
// Flusher, which the dispatcher invokes when draining a flush marker.
//
// Init distinguishes three outcomes: nil registers the backend,
// ErrIgnore declines startup cleanly (the add succeeds but nothing is
// registered), and any other error fails the add.
//
// Built-in backends:
//
//   - Console writes formatted events to an io.Writer (default: stdout)
//     through a buffer drained on flush.
//   - File appends to a file with size- and interval-based rotation,
//     gzip-compressed backups, and bounded backup retention.
//   - SQLite stores events as rows in a local database.
//   - Kafka publishes JSON-encoded events to a topic in local batches.
//
// Events passed to HandleEvent are pooled and recycled after delivery;
// a backend must never retain one past the callback.
package backend
