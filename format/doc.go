// Package format renders log events into bytes for the built-in
// backends.
//
// Two implementations are provided: TextFormatter produces a
// single-line human-readable form, JSONFormatter produces one JSON
// object per event, built manually into a pooled buffer so the hot
// path stays allocation-free. Both implement WriterFormatter so
// backends can write directly into their output without an
// intermediate byte slice.
//
// Truncate implements the dispatcher's global message-size cap: it is
// applied at the producer entry point, never splits a UTF-8 sequence,
// and marks shortened messages with a " (truncated)" suffix.
package format
