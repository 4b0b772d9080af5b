package format

import (
	"bytes"
	"io"
	"sync"

	"github.com/philipp01105/logfan/core"
)

// Formatter defines the interface for event formatters
type Formatter interface {
	// Format formats a log event into bytes
	Format(ev *core.Event) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can implement
// to write directly to a writer without intermediate byte slice allocation.
type WriterFormatter interface {
	// FormatTo formats a log event and writes it directly to the writer
	FormatTo(ev *core.Event, w io.Writer) error
}

// Config holds common formatter configuration
type Config struct {
	// TimestampFormat specifies the time format (empty for RFC3339)
	TimestampFormat string
	// IncludeOrigin includes the event's origin in the output
	IncludeOrigin bool
}

// Truncate shortens msg to at most limit bytes, appending a marker when
// anything was cut. A negative limit means unlimited. The cut never
// splits a UTF-8 sequence.
func Truncate(msg string, limit int) string {
	if limit < 0 || len(msg) <= limit {
		return msg
	}
	// Back up to a rune boundary
	for limit > 0 && msg[limit]&0xc0 == 0x80 {
		limit--
	}
	return msg[:limit] + " (truncated)"
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
