package backend

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/format"
)

// SQLite stores events in a local SQLite database, one row per event
// with the metadata serialized as JSON. Inserts run inside the
// dispatcher's delivery loop, so the backend keeps them to a single
// prepared statement.
type SQLite struct {
	path    string
	db      *sql.DB
	insert  *sql.Stmt
	encoder *format.JSONFormatter
}

// SQLiteConfig holds configuration for the SQLite backend
type SQLiteConfig struct {
	// Path is the database file location (required)
	Path string
}

// NewSQLite creates a SQLite backend; the database is opened in Init
func NewSQLite(cfg SQLiteConfig) *SQLite {
	return &SQLite{
		path:    cfg.Path,
		encoder: format.NewJSONFormatter(format.Config{}),
	}
}

// Init opens the database and prepares the schema. An empty path
// declines startup with ErrIgnore. The "path" init argument overrides
// the configured path.
func (s *SQLite) Init(opts map[string]interface{}) error {
	if p, ok := opts["path"].(string); ok {
		s.path = p
	}
	if s.path == "" {
		return ErrIgnore
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		time DATETIME NOT NULL,
		level TEXT NOT NULL,
		origin TEXT,
		message TEXT NOT NULL,
		metadata TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return err
	}

	insert, err := db.Prepare(
		`INSERT INTO events (time, level, origin, message, metadata) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.insert = insert
	return nil
}

// HandleEvent inserts one event row
func (s *SQLite) HandleEvent(ev *core.Event) error {
	if s.db == nil {
		return fmt.Errorf("sqlite backend %s not initialized", s.path)
	}
	meta, err := s.encoder.Format(ev)
	if err != nil {
		return err
	}
	_, err = s.insert.Exec(ev.Time, ev.Level.String(), ev.Origin, ev.Message, string(meta))
	return err
}

// HandleCall accepts the string "count" and replies with the number of
// stored events.
func (s *SQLite) HandleCall(req interface{}) (interface{}, error) {
	if r, ok := req.(string); ok && r == "count" {
		if s.db == nil {
			return nil, fmt.Errorf("sqlite backend %s not initialized", s.path)
		}
		var n int64
		err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
		return n, err
	}
	return nil, errUnsupported(req)
}

// Terminate closes the statement and the database
func (s *SQLite) Terminate(error) {
	if s.insert != nil {
		s.insert.Close()
		s.insert = nil
	}
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}
