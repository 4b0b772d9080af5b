package backend

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/format"
)

// Console writes formatted events to an io.Writer through an internal
// buffer that is drained on flush. The dispatcher serializes all
// callbacks, so the mutex only matters for callers poking Stats or
// swapping formatters from outside.
type Console struct {
	mu        sync.Mutex
	out       *bufio.Writer
	formatter format.Formatter
	wf        format.WriterFormatter
	processed uint64
}

// ConsoleConfig holds configuration for the console backend
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter format.Formatter
	// BufferSize is the size of the write buffer in bytes (default: 4096)
	BufferSize int
}

// NewConsole creates a console backend. Resources are not touched
// until Init runs under the dispatcher.
func NewConsole(cfg ConsoleConfig) *Console {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		cfg.Formatter = format.NewTextFormatter(format.Config{})
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}

	c := &Console{
		out:       bufio.NewWriterSize(cfg.Writer, cfg.BufferSize),
		formatter: cfg.Formatter,
	}
	// Cache WriterFormatter for the zero-alloc path
	c.wf, _ = cfg.Formatter.(format.WriterFormatter)
	return c
}

// Init accepts an optional "formatter" argument overriding the
// configured one.
func (c *Console) Init(opts map[string]interface{}) error {
	if f, ok := opts["formatter"].(format.Formatter); ok {
		c.setFormatter(f)
	}
	return nil
}

// HandleEvent formats and buffers one event
func (c *Console) HandleEvent(ev *core.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wf != nil {
		if err := c.wf.FormatTo(ev, c.out); err != nil {
			return err
		}
		c.processed++
		return nil
	}

	data, err := c.formatter.Format(ev)
	if err != nil {
		return err
	}
	if _, err := c.out.Write(data); err != nil {
		return err
	}
	c.processed++
	return nil
}

// HandleCall accepts a format.Formatter to swap the output format at
// runtime, or the string "processed" to read the processed count.
func (c *Console) HandleCall(req interface{}) (interface{}, error) {
	switch r := req.(type) {
	case format.Formatter:
		c.setFormatter(r)
		return nil, nil
	case string:
		if r == "processed" {
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.processed, nil
		}
	}
	return nil, errUnsupported(req)
}

// Flush drains the write buffer
func (c *Console) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Flush()
}

// Terminate flushes whatever is still buffered
func (c *Console) Terminate(error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out.Flush()
}

func (c *Console) setFormatter(f format.Formatter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formatter = f
	c.wf, _ = f.(format.WriterFormatter)
}
