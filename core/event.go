package core

import (
	"sync"
	"time"
)

// Level represents the severity level of a log event
type Level int8

const (
	// DebugLevel for detailed debugging information
	DebugLevel Level = iota
	// InfoLevel for general informational messages (default)
	InfoLevel
	// NoticeLevel for normal but significant conditions
	NoticeLevel
	// WarnLevel for warning messages
	WarnLevel
	// ErrorLevel for error messages
	ErrorLevel
	// FatalLevel for unrecoverable failures
	FatalLevel
	// PanicLevel for panics
	PanicLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case NoticeLevel:
		return "NOTICE"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	case PanicLevel:
		return "PANIC"
	default:
		return "UNKNOWN"
	}
}

// Normalize collapses the level to one of the four canonical dispatch
// levels. Backends only ever observe Debug, Info, Warn and Error:
// levels above Error map to Error, levels between Debug and Info map
// to Info.
func (l Level) Normalize() Level {
	switch {
	case l <= DebugLevel:
		return DebugLevel
	case l < WarnLevel:
		return InfoLevel
	case l == WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

// Event is a single structured log record. An Event is immutable once
// it has been handed to a dispatcher: the dispatcher queue owns it
// until it has been delivered to every live backend, after which it is
// recycled. Backends must not retain a reference past HandleEvent.
type Event struct {
	Time     time.Time
	Level    Level
	Origin   string
	Message  string
	Metadata Metadata
}

// eventPool is a pool of Event objects to reduce allocations
var eventPool = sync.Pool{
	New: func() interface{} {
		return &Event{
			Metadata: make(Metadata, 0, 8), // Pre-allocate for 8 pairs
		}
	},
}

// GetEvent retrieves an Event from the pool
func GetEvent() *Event {
	e := eventPool.Get().(*Event)
	e.Time = Now()
	e.Level = InfoLevel
	e.Origin = ""
	e.Message = ""
	e.Metadata = e.Metadata[:0]
	return e
}

// PutEvent returns an Event to the pool
func PutEvent(e *Event) {
	if e == nil {
		return
	}
	// Re-slice to zero length; GC handles reference cleanup
	e.Metadata = e.Metadata[:0]
	e.Message = ""
	e.Origin = ""
	eventPool.Put(e)
}
