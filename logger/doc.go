// Package logger is the public entry point of logfan.
//
// A Logger is an immutable producer handle bound to a dispatcher. It
// stamps every event with an origin and default metadata, filters by
// minimum level, and collapses fine-grained levels to the four the
// dispatch layer delivers (Debug, Info, Warn, Error). How a call
// behaves under load is decided per call by the dispatcher: enqueue
// and return, enqueue and block, or discard and count.
//
// The package keeps a default logger wired to a console backend, with
// package-level functions mirroring the Logger methods, so small
// programs can log without any setup:
//
//	logger.Info("listening", core.Pair{Key: "addr", Value: addr})
//
// Backend management and threshold tuning go through AddBackend,
// RemoveBackend, ConfigureGlobal and ConfigureBackend, either on a
// Logger or at package level for the default instance.
package logger
