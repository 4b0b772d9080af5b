package backend

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/format"
)

func consoleEvent(msg string) *core.Event {
	return &core.Event{
		Time:    time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:   core.InfoLevel,
		Message: msg,
	}
}

func TestConsole_BuffersUntilFlush(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(ConsoleConfig{Writer: &out})
	if err := c.Init(nil); err != nil {
		t.Fatal(err)
	}

	if err := c.HandleEvent(consoleEvent("hello")); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("event reached the writer before flush: %q", out.String())
	}

	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "[INFO] hello") {
		t.Errorf("flushed output = %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("output missing newline: %q", got)
	}
}

func TestConsole_SmallBufferSpills(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(ConsoleConfig{Writer: &out, BufferSize: 16})
	c.Init(nil)

	for i := 0; i < 10; i++ {
		if err := c.HandleEvent(consoleEvent("spill over the tiny buffer")); err != nil {
			t.Fatal(err)
		}
	}
	if out.Len() == 0 {
		t.Error("tiny buffer never spilled to the writer")
	}
}

func TestConsole_FormatterSwapViaCall(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(ConsoleConfig{Writer: &out})
	c.Init(nil)

	if _, err := c.HandleCall(format.NewJSONFormatter(format.Config{})); err != nil {
		t.Fatal(err)
	}
	c.HandleEvent(consoleEvent("json now"))
	c.Flush()

	got := out.String()
	if !strings.Contains(got, `"message":"json now"`) {
		t.Errorf("output after formatter swap = %q", got)
	}
}

func TestConsole_InitFormatterOption(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(ConsoleConfig{Writer: &out})
	err := c.Init(map[string]interface{}{
		"formatter": format.Formatter(format.NewJSONFormatter(format.Config{})),
	})
	if err != nil {
		t.Fatal(err)
	}

	c.HandleEvent(consoleEvent("via init"))
	c.Flush()
	if !strings.Contains(out.String(), `"message":"via init"`) {
		t.Errorf("init formatter option ignored: %q", out.String())
	}
}

func TestConsole_ProcessedCount(t *testing.T) {
	c := NewConsole(ConsoleConfig{Writer: &bytes.Buffer{}})
	c.Init(nil)

	for i := 0; i < 3; i++ {
		c.HandleEvent(consoleEvent("counted"))
	}
	res, err := c.HandleCall("processed")
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := res.(uint64); !ok || n != 3 {
		t.Errorf("processed = %v, want 3", res)
	}
}

func TestConsole_UnsupportedCall(t *testing.T) {
	c := NewConsole(ConsoleConfig{Writer: &bytes.Buffer{}})
	c.Init(nil)

	if _, err := c.HandleCall(42); err == nil {
		t.Error("unsupported request did not error")
	}
}

func TestConsole_TerminateFlushes(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(ConsoleConfig{Writer: &out})
	c.Init(nil)

	c.HandleEvent(consoleEvent("last words"))
	c.Terminate(nil)
	if !strings.Contains(out.String(), "last words") {
		t.Errorf("terminate dropped buffered output: %q", out.String())
	}
}
