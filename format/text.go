package format

import (
	"bytes"
	"io"
	"time"

	"github.com/philipp01105/logfan/core"
)

// TextFormatter formats log events as human-readable text
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats an event as text
func (f *TextFormatter) Format(ev *core.Event) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(ev, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats an event and writes it directly to the writer
func (f *TextFormatter) FormatTo(ev *core.Event, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(ev, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [...]string{
	core.DebugLevel:  " [DEBUG] ",
	core.InfoLevel:   " [INFO] ",
	core.NoticeLevel: " [NOTICE] ",
	core.WarnLevel:   " [WARN] ",
	core.ErrorLevel:  " [ERROR] ",
	core.FatalLevel:  " [FATAL] ",
	core.PanicLevel:  " [PANIC] ",
}

// formatToBuffer writes the formatted event into the given buffer
func (f *TextFormatter) formatToBuffer(ev *core.Event, buf *bytes.Buffer) {
	// Timestamp - use AppendFormat to avoid string allocation
	buf.Write(ev.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	// Level - use pre-formatted string
	if int(ev.Level) >= 0 && int(ev.Level) < len(levelBrackets) {
		buf.WriteString(levelBrackets[ev.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	// Origin if enabled
	if f.IncludeOrigin && ev.Origin != "" {
		buf.WriteByte('[')
		buf.WriteString(ev.Origin)
		buf.WriteString("] ")
	}

	// Message
	buf.WriteString(ev.Message)

	// Metadata
	for _, pair := range ev.Metadata {
		buf.WriteByte(' ')
		buf.WriteString(pair.Key)
		buf.WriteByte('=')
		buf.WriteString(pair.ValueString())
	}

	buf.WriteByte('\n')
}
