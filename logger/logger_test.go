package logger

import (
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/dispatch"
)

// capture is a test backend that records delivered events
type capture struct {
	mu     sync.Mutex
	events []core.Event
}

func (c *capture) Init(map[string]interface{}) error { return nil }

func (c *capture) HandleEvent(ev *core.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// The dispatcher recycles events after delivery, so keep a copy
	cp := *ev
	cp.Metadata = append(core.Metadata(nil), ev.Metadata...)
	c.events = append(c.events, cp)
	return nil
}

func (c *capture) HandleCall(req interface{}) (interface{}, error) { return nil, nil }

func (c *capture) Terminate(error) {}

func (c *capture) all() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Event, len(c.events))
	copy(out, c.events)
	return out
}

func newTestLogger(t *testing.T, level core.Level) (*Logger, *capture) {
	t.Helper()
	d := dispatch.New(dispatch.DispatcherConfig{
		Diag:           zap.NewNop(),
		ReportInterval: -1,
	})
	t.Cleanup(func() { d.Close() })

	c := &capture{}
	if err := d.AddBackend(dispatch.Identity{Name: "capture"}, c, dispatch.AddOptions{}); err != nil {
		t.Fatal(err)
	}

	l := NewBuilder().
		WithDispatcher(d).
		WithOrigin("test").
		WithLevel(level).
		Build()
	return l, c
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, c := newTestLogger(t, core.WarnLevel)

	l.Debug("filtered")
	l.Info("filtered")
	l.Notice("filtered") // collapses to info, below warn
	l.Warn("kept")
	l.Error("kept")
	l.Flush()

	got := c.all()
	if len(got) != 2 {
		t.Fatalf("delivered %d events, want 2: %+v", len(got), got)
	}
	if got[0].Level != core.WarnLevel || got[1].Level != core.ErrorLevel {
		t.Errorf("levels = %v, %v", got[0].Level, got[1].Level)
	}
}

func TestLogger_LevelCollapse(t *testing.T) {
	l, c := newTestLogger(t, core.DebugLevel)

	l.Notice("as info")
	l.Log(core.FatalLevel, "as error")
	l.Log(core.PanicLevel, "as error too")
	l.Flush()

	got := c.all()
	if len(got) != 3 {
		t.Fatalf("delivered %d events, want 3", len(got))
	}
	if got[0].Level != core.InfoLevel {
		t.Errorf("notice delivered as %v, want info", got[0].Level)
	}
	for _, ev := range got[1:] {
		if ev.Level != core.ErrorLevel {
			t.Errorf("%q delivered as %v, want error", ev.Message, ev.Level)
		}
	}
}

func TestLogger_OriginAndMetadata(t *testing.T) {
	l, c := newTestLogger(t, core.InfoLevel)

	l.Info("tagged", core.Pair{Key: "user", Value: "alice"})
	l.Flush()

	got := c.all()
	if len(got) != 1 {
		t.Fatalf("delivered %d events, want 1", len(got))
	}
	if got[0].Origin != "test" {
		t.Errorf("origin = %q, want test", got[0].Origin)
	}
	if v, ok := got[0].Metadata.Get("user"); !ok || v != "alice" {
		t.Errorf("metadata user = %v, %v", v, ok)
	}
}

func TestLogger_WithMergesMetadata(t *testing.T) {
	l, c := newTestLogger(t, core.InfoLevel)

	child := l.With(core.Pair{Key: "request_id", Value: "r-1"})
	grandchild := child.With(core.Pair{Key: "shard", Value: 7})

	grandchild.Info("inherited", core.Pair{Key: "extra", Value: true})
	l.Info("bare")
	l.Flush()

	got := c.all()
	if len(got) != 2 {
		t.Fatalf("delivered %d events, want 2", len(got))
	}
	rich := got[0]
	for _, key := range []string{"request_id", "shard", "extra"} {
		if _, ok := rich.Metadata.Get(key); !ok {
			t.Errorf("child event missing %s: %v", key, rich.Metadata)
		}
	}
	if len(got[1].Metadata) != 0 {
		t.Errorf("With leaked metadata into the parent: %v", got[1].Metadata)
	}
}

func TestLogger_FormattedVariants(t *testing.T) {
	l, c := newTestLogger(t, core.InfoLevel)

	l.Infof("answer is %d", 42)
	l.Debugf("never evaluated %d", 0) // below the level, skipped
	l.Flush()

	got := c.all()
	if len(got) != 1 || got[0].Message != "answer is 42" {
		t.Errorf("formatted events = %+v", got)
	}
}

func TestLogger_ConfigureGlobalTruncates(t *testing.T) {
	l, c := newTestLogger(t, core.InfoLevel)

	if err := l.ConfigureGlobal(dispatch.Options{TruncateLimit: dispatch.Int(5)}); err != nil {
		t.Fatal(err)
	}
	l.Info("0123456789")
	l.Flush()

	got := c.all()
	if len(got) != 1 || got[0].Message != "01234 (truncated)" {
		t.Errorf("truncated message = %+v", got)
	}
}

func TestLogger_BackendManagementPassthrough(t *testing.T) {
	l, _ := newTestLogger(t, core.InfoLevel)

	extra := &capture{}
	id := dispatch.Identity{Name: "extra"}
	if err := l.AddBackend(id, extra, dispatch.AddOptions{}); err != nil {
		t.Fatal(err)
	}
	l.Info("fanout")
	l.Flush()
	if len(extra.all()) != 1 {
		t.Error("added backend saw no events")
	}

	if err := l.RemoveBackend(id, dispatch.RemoveOptions{}); err != nil {
		t.Fatal(err)
	}
	l.Info("after removal")
	l.Flush()
	if len(extra.all()) != 1 {
		t.Error("removed backend kept receiving events")
	}
}

func TestLogger_NilDispatcherIsInert(t *testing.T) {
	l := NewBuilder().WithOrigin("orphan").Build()
	l.Info("nowhere to go") // must not panic
}

func TestDefault_SwapAndPackageFuncs(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	l, c := newTestLogger(t, core.DebugLevel)
	SetDefault(l)

	Info("through the package")
	Warnf("warned %s", "once")
	With(core.Pair{Key: "k", Value: "v"}).Debug("derived")
	if err := Flush(); err != nil {
		t.Fatal(err)
	}

	got := c.all()
	if len(got) != 3 {
		t.Fatalf("delivered %d events, want 3: %+v", len(got), got)
	}
	if got[0].Message != "through the package" || got[1].Message != "warned once" {
		t.Errorf("messages = %q, %q", got[0].Message, got[1].Message)
	}
	if _, ok := got[2].Metadata.Get("k"); !ok {
		t.Errorf("package With dropped metadata: %v", got[2].Metadata)
	}
}
