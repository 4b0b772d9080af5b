package logger

import (
	"fmt"

	"github.com/philipp01105/logfan/backend"
	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/dispatch"
)

// Logger is the producer-facing API (immutable). It stamps events with
// an origin and default metadata, applies level filtering and collapse,
// and hands them to its dispatcher, which decides per call whether to
// enqueue, block, or discard.
type Logger struct {
	dispatcher *dispatch.Dispatcher
	origin     string
	level      core.Level
	meta       core.Metadata
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	dispatcher *dispatch.Dispatcher
	origin     string
	level      core.Level
	meta       core.Metadata
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level: core.InfoLevel, // Default level
	}
}

// WithDispatcher binds the logger to a dispatcher
func (b *Builder) WithDispatcher(d *dispatch.Dispatcher) *Builder {
	b.dispatcher = d
	return b
}

// WithOrigin identifies the producing execution context on every event
func (b *Builder) WithOrigin(origin string) *Builder {
	b.origin = origin
	return b
}

// WithLevel sets the minimum level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithMetadata adds default metadata to all events
func (b *Builder) WithMetadata(meta ...core.Pair) *Builder {
	b.meta = append(b.meta, meta...)
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	return &Logger{
		dispatcher: b.dispatcher,
		origin:     b.origin,
		level:      b.level,
		meta:       b.meta,
	}
}

// With creates a new Logger with additional metadata (immutable operation)
func (l *Logger) With(meta ...core.Pair) *Logger {
	newMeta := make(core.Metadata, len(l.meta)+len(meta))
	copy(newMeta, l.meta)
	copy(newMeta[len(l.meta):], meta)

	return &Logger{
		dispatcher: l.dispatcher,
		origin:     l.origin,
		level:      l.level,
		meta:       newMeta,
	}
}

// Dispatcher returns the dispatcher this logger posts to
func (l *Logger) Dispatcher() *dispatch.Dispatcher {
	return l.dispatcher
}

// Log posts a message at the specified level. Levels collapse at this
// boundary: anything above Error is delivered as Error, anything
// between Debug and Info as Info.
func (l *Logger) Log(level core.Level, msg string, meta ...core.Pair) {
	level = level.Normalize()
	// Level check - exit early BEFORE any allocations
	if level < l.level.Normalize() {
		return
	}
	l.log(level, msg, meta)
}

// log builds the event and hands ownership to the dispatcher
func (l *Logger) log(level core.Level, msg string, meta []core.Pair) {
	if l.dispatcher == nil {
		return
	}

	ev := core.GetEvent()
	ev.Level = level
	ev.Origin = l.origin
	ev.Message = msg
	if len(l.meta) > 0 {
		ev.Metadata = append(ev.Metadata, l.meta...)
	}
	if len(meta) > 0 {
		ev.Metadata = append(ev.Metadata, meta...)
	}

	l.dispatcher.Log(ev)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, meta ...core.Pair) {
	l.Log(core.DebugLevel, msg, meta...)
}

// Info logs an info message
func (l *Logger) Info(msg string, meta ...core.Pair) {
	l.Log(core.InfoLevel, msg, meta...)
}

// Notice logs a notice message (delivered as info)
func (l *Logger) Notice(msg string, meta ...core.Pair) {
	l.Log(core.NoticeLevel, msg, meta...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, meta ...core.Pair) {
	l.Log(core.WarnLevel, msg, meta...)
}

// Error logs an error message
func (l *Logger) Error(msg string, meta ...core.Pair) {
	l.Log(core.ErrorLevel, msg, meta...)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(core.DebugLevel, format, args)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(core.InfoLevel, format, args)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(core.WarnLevel, format, args)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(core.ErrorLevel, format, args)
}

// logf defers Sprintf until after the level check
func (l *Logger) logf(level core.Level, format string, args []interface{}) {
	level = level.Normalize()
	if level < l.level.Normalize() {
		return
	}
	l.log(level, fmt.Sprintf(format, args...), nil)
}

// AddBackend registers a backend on the logger's dispatcher
func (l *Logger) AddBackend(id dispatch.Identity, b backend.Backend, opts dispatch.AddOptions) error {
	return l.dispatcher.AddBackend(id, b, opts)
}

// RemoveBackend deregisters a backend from the logger's dispatcher
func (l *Logger) RemoveBackend(id dispatch.Identity, opts dispatch.RemoveOptions) error {
	return l.dispatcher.RemoveBackend(id, opts)
}

// ConfigureGlobal replaces a subset of the overload thresholds
func (l *Logger) ConfigureGlobal(opts dispatch.Options) error {
	return l.dispatcher.Configure(opts)
}

// ConfigureBackend routes a synchronous request to the named backend
func (l *Logger) ConfigureBackend(id dispatch.Identity, req interface{}) (interface{}, error) {
	return l.dispatcher.Call(id, req)
}

// Flush blocks until all previously posted events are delivered
func (l *Logger) Flush() error {
	return l.dispatcher.Flush()
}

// Close shuts down the logger's dispatcher
func (l *Logger) Close() error {
	return l.dispatcher.Close()
}
