package logger

import (
	"sync"

	"github.com/philipp01105/logfan/backend"
	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/dispatch"
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

func init() {
	// Initialize default logger with a console backend
	d := dispatch.New(dispatch.DispatcherConfig{})
	d.AddBackend(dispatch.Identity{Name: "console"},
		backend.NewConsole(backend.ConsoleConfig{}), dispatch.AddOptions{})

	defaultLogger = NewBuilder().
		WithDispatcher(d).
		WithLevel(core.InfoLevel).
		Build()
}

// Default returns the default logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Package-level convenience functions using the default logger

// Debug logs a debug message using the default logger
func Debug(msg string, meta ...core.Pair) {
	Default().Debug(msg, meta...)
}

// Info logs an info message using the default logger
func Info(msg string, meta ...core.Pair) {
	Default().Info(msg, meta...)
}

// Notice logs a notice message using the default logger
func Notice(msg string, meta ...core.Pair) {
	Default().Notice(msg, meta...)
}

// Warn logs a warning message using the default logger
func Warn(msg string, meta ...core.Pair) {
	Default().Warn(msg, meta...)
}

// Error logs an error message using the default logger
func Error(msg string, meta ...core.Pair) {
	Default().Error(msg, meta...)
}

// Debugf logs a formatted debug message using the default logger
func Debugf(format string, args ...interface{}) {
	Default().Debugf(format, args...)
}

// Infof logs a formatted info message using the default logger
func Infof(format string, args ...interface{}) {
	Default().Infof(format, args...)
}

// Warnf logs a formatted warning message using the default logger
func Warnf(format string, args ...interface{}) {
	Default().Warnf(format, args...)
}

// Errorf logs a formatted error message using the default logger
func Errorf(format string, args ...interface{}) {
	Default().Errorf(format, args...)
}

// With creates a new logger with additional metadata
func With(meta ...core.Pair) *Logger {
	return Default().With(meta...)
}

// AddBackend registers a backend on the default dispatcher
func AddBackend(id dispatch.Identity, b backend.Backend, opts dispatch.AddOptions) error {
	return Default().AddBackend(id, b, opts)
}

// RemoveBackend deregisters a backend from the default dispatcher
func RemoveBackend(id dispatch.Identity, opts dispatch.RemoveOptions) error {
	return Default().RemoveBackend(id, opts)
}

// ConfigureGlobal replaces a subset of the default dispatcher's
// overload thresholds
func ConfigureGlobal(opts dispatch.Options) error {
	return Default().ConfigureGlobal(opts)
}

// ConfigureBackend routes a synchronous request to a backend on the
// default dispatcher
func ConfigureBackend(id dispatch.Identity, req interface{}) (interface{}, error) {
	return Default().ConfigureBackend(id, req)
}

// Flush blocks until all events posted to the default logger are delivered
func Flush() error {
	return Default().Flush()
}
