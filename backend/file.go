package backend

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/format"
)

// File appends formatted events to a file with rotation support.
// Rotated files are gzip-compressed in place and old backups are
// cleaned up once MaxBackups is exceeded.
type File struct {
	mu             sync.Mutex
	path           string
	file           *os.File
	formatter      format.Formatter
	wf             format.WriterFormatter
	maxSize        int64
	maxBackups     int
	rotateInterval time.Duration
	compress       bool
	currentSize    int64
	lastRotate     time.Time
}

// FileConfig holds configuration for the file backend
type FileConfig struct {
	// Path is the log file location (required)
	Path string
	// Formatter to use (default: TextFormatter)
	Formatter format.Formatter
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxBackups is the maximum number of rotated files to retain (0 = keep all)
	MaxBackups int
	// RotateInterval is the interval for time-based rotation (0 = no interval rotation)
	RotateInterval time.Duration
	// Compress gzips rotated files (default: true when rotation is enabled)
	Compress *bool
}

// NewFile creates a file backend. The file itself is opened in Init,
// under the dispatcher, so a bad path surfaces as an init failure
// through AddBackend.
func NewFile(cfg FileConfig) *File {
	if cfg.Formatter == nil {
		cfg.Formatter = format.NewTextFormatter(format.Config{})
	}
	compress := cfg.MaxSize > 0 || cfg.RotateInterval > 0
	if cfg.Compress != nil {
		compress = *cfg.Compress
	}

	f := &File{
		path:           cfg.Path,
		formatter:      cfg.Formatter,
		maxSize:        cfg.MaxSize,
		maxBackups:     cfg.MaxBackups,
		rotateInterval: cfg.RotateInterval,
		compress:       compress,
	}
	f.wf, _ = cfg.Formatter.(format.WriterFormatter)
	return f
}

// Init opens the log file. An empty path declines startup with
// ErrIgnore so a disabled file backend can stay in the wiring without
// registering. The "path" init argument overrides the configured path.
func (f *File) Init(opts map[string]interface{}) error {
	if p, ok := opts["path"].(string); ok {
		f.path = p
	}
	if f.path == "" {
		return ErrIgnore
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	f.mu.Lock()
	f.file = file
	f.currentSize = info.Size()
	f.lastRotate = time.Now()
	f.mu.Unlock()
	return nil
}

// HandleEvent formats and appends one event, rotating first when due
func (f *File) HandleEvent(ev *core.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return fmt.Errorf("file backend %s not initialized", f.path)
	}
	if err := f.rotateIfNeeded(); err != nil {
		return err
	}

	if f.wf != nil {
		before := f.currentSize
		cw := countingWriter{w: f.file, n: &f.currentSize}
		if err := f.wf.FormatTo(ev, cw); err != nil {
			f.currentSize = before
			return err
		}
		return nil
	}

	data, err := f.formatter.Format(ev)
	if err != nil {
		return err
	}
	n, err := f.file.Write(data)
	f.currentSize += int64(n)
	return err
}

type countingWriter struct {
	w io.Writer
	n *int64
}

func (c countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}

// HandleCall accepts the string "rotate" to force a rotation
func (f *File) HandleCall(req interface{}) (interface{}, error) {
	if s, ok := req.(string); ok && s == "rotate" {
		f.mu.Lock()
		defer f.mu.Unlock()
		return nil, f.rotate()
	}
	return nil, errUnsupported(req)
}

// Flush syncs the file to stable storage
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

// Terminate syncs and closes the file
func (f *File) Terminate(error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return
	}
	f.file.Sync()
	f.file.Close()
	f.file = nil
}

// rotateIfNeeded checks and performs rotation if needed
func (f *File) rotateIfNeeded() error {
	needRotate := false

	if f.maxSize > 0 && f.currentSize >= f.maxSize {
		needRotate = true
	}
	if f.rotateInterval > 0 && time.Since(f.lastRotate) >= f.rotateInterval {
		needRotate = true
	}
	if !needRotate {
		return nil
	}
	return f.rotate()
}

// rotate renames the current file with a timestamp suffix, compresses
// it and reopens a fresh file
func (f *File) rotate() error {
	if err := f.file.Sync(); err != nil {
		return err
	}
	if err := f.file.Close(); err != nil {
		return err
	}

	timestamp := time.Now().Format("2006-01-02T15-04-05.000")
	rotatedName := fmt.Sprintf("%s.%s", f.path, timestamp)

	if err := os.Rename(f.path, rotatedName); err != nil {
		// If rename fails, try to reopen the original file
		file, openErr := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if openErr != nil {
			return fmt.Errorf("rotation failed: %v, reopen failed: %v", err, openErr)
		}
		f.file = file
		return err
	}

	if f.compress {
		if err := compressFile(rotatedName); err == nil {
			os.Remove(rotatedName)
		}
	}
	if f.maxBackups > 0 {
		f.cleanupOldBackups()
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	f.file = file
	f.currentSize = 0
	f.lastRotate = time.Now()
	return nil
}

// compressFile gzips src into src.gz
func compressFile(src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(src + ".gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		os.Remove(src + ".gz")
		return err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		os.Remove(src + ".gz")
		return err
	}
	return out.Close()
}

// cleanupOldBackups removes the oldest rotated files beyond MaxBackups
func (f *File) cleanupOldBackups() {
	dir := filepath.Dir(f.path)
	base := filepath.Base(f.path)

	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return
	}

	var backups []string
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), base+".") {
			backups = append(backups, match)
		}
	}

	// Sort by modification time (oldest first)
	sort.Slice(backups, func(i, j int) bool {
		infoI, errI := os.Stat(backups[i])
		infoJ, errJ := os.Stat(backups[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().Before(infoJ.ModTime())
	})

	if len(backups) > f.maxBackups {
		for _, stale := range backups[:len(backups)-f.maxBackups] {
			if err := os.Remove(stale); err != nil {
				return
			}
		}
	}
}
