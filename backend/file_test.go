package backend

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/philipp01105/logfan/core"
)

func fileEvent(msg string) *core.Event {
	return &core.Event{
		Time:    time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:   core.InfoLevel,
		Message: msg,
	}
}

func TestFile_EmptyPathIgnored(t *testing.T) {
	f := NewFile(FileConfig{})
	if err := f.Init(nil); !errors.Is(err, ErrIgnore) {
		t.Errorf("Init with empty path = %v, want ErrIgnore", err)
	}
}

func TestFile_WriteAndSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	f := NewFile(FileConfig{Path: path})
	if err := f.Init(nil); err != nil {
		t.Fatal(err)
	}
	defer f.Terminate(nil)

	if err := f.HandleEvent(fileEvent("to disk")); err != nil {
		t.Fatal(err)
	}
	if err := f.Flush(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[INFO] to disk") {
		t.Errorf("file contents = %q", data)
	}
}

func TestFile_PathInitArgOverrides(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(FileConfig{Path: filepath.Join(dir, "configured.log")})
	override := filepath.Join(dir, "override.log")
	if err := f.Init(map[string]interface{}{"path": override}); err != nil {
		t.Fatal(err)
	}
	defer f.Terminate(nil)

	f.HandleEvent(fileEvent("relocated"))
	f.Flush()
	if _, err := os.Stat(override); err != nil {
		t.Errorf("override path not written: %v", err)
	}
}

func TestFile_ForcedRotationCompresses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	yes := true
	f := NewFile(FileConfig{Path: path, Compress: &yes})
	if err := f.Init(nil); err != nil {
		t.Fatal(err)
	}
	defer f.Terminate(nil)

	f.HandleEvent(fileEvent("before rotation"))
	if _, err := f.HandleCall("rotate"); err != nil {
		t.Fatal(err)
	}
	f.HandleEvent(fileEvent("after rotation"))
	f.Flush()

	backups, _ := filepath.Glob(path + ".*.gz")
	if len(backups) != 1 {
		t.Fatalf("compressed backups = %v, want exactly one", backups)
	}

	// The backup holds the pre-rotation event
	in, err := os.Open(backups[0])
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	gz, err := gzip.NewReader(in)
	if err != nil {
		t.Fatal(err)
	}
	old, err := io.ReadAll(gz)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(old), "before rotation") {
		t.Errorf("rotated contents = %q", old)
	}

	// The live file starts fresh
	live, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(live), "before rotation") || !strings.Contains(string(live), "after rotation") {
		t.Errorf("live contents = %q", live)
	}
}

func TestFile_SizeRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	f := NewFile(FileConfig{Path: path, MaxSize: 64})
	if err := f.Init(nil); err != nil {
		t.Fatal(err)
	}
	defer f.Terminate(nil)

	// Each formatted line is well over 32 bytes, so the third write
	// must find the size cap exceeded and rotate first.
	for i := 0; i < 3; i++ {
		if err := f.HandleEvent(fileEvent("a reasonably long line of log output")); err != nil {
			t.Fatal(err)
		}
	}

	backups, _ := filepath.Glob(path + ".*")
	if len(backups) == 0 {
		t.Error("size cap exceeded but no rotation happened")
	}
}

func TestFile_MaxBackupsCleanup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	no := false
	f := NewFile(FileConfig{Path: path, MaxBackups: 2, Compress: &no})
	if err := f.Init(nil); err != nil {
		t.Fatal(err)
	}
	defer f.Terminate(nil)

	for i := 0; i < 5; i++ {
		f.HandleEvent(fileEvent("fill"))
		if _, err := f.HandleCall("rotate"); err != nil {
			t.Fatal(err)
		}
		// Rotated names carry a millisecond timestamp suffix
		time.Sleep(2 * time.Millisecond)
	}

	backups, _ := filepath.Glob(path + ".*")
	if len(backups) > 2 {
		t.Errorf("retained %d backups, want at most 2: %v", len(backups), backups)
	}
}

func TestFile_HandleEventBeforeInit(t *testing.T) {
	f := NewFile(FileConfig{Path: "never-opened.log"})
	if err := f.HandleEvent(fileEvent("too early")); err == nil {
		t.Error("uninitialized backend accepted an event")
	}
}

func TestFile_UnsupportedCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	f := NewFile(FileConfig{Path: path})
	if err := f.Init(nil); err != nil {
		t.Fatal(err)
	}
	defer f.Terminate(nil)

	if _, err := f.HandleCall("resize"); err == nil {
		t.Error("unsupported request did not error")
	}
}
