// Package history keeps a journal of lifecycle commands run against a
// project in a sqlite database under .proxima/.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

// DirName is the per-project directory holding the journal.
const DirName = ".proxima"

// FileName is the journal database file inside DirName.
const FileName = "history.db"

// Outcome is how a command invocation ended.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeDenied Outcome = "denied"
	OutcomeFailed Outcome = "failed"
)

// Entry is one journaled command invocation.
type Entry struct {
	ID        string
	Command   lifecycle.Command
	From      lifecycle.State
	To        lifecycle.State
	Outcome   Outcome
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

const schema = `CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	from_state  TEXT NOT NULL,
	to_state    TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL
)`

// Journal appends and lists history entries. The database is opened on
// first use so that merely constructing a Journal never touches disk.
//
// Directory and existence checks go through fs; the sqlite driver itself
// opens path on the host filesystem, so fs must be OS-backed for Record to
// persist anything.
type Journal struct {
	fs    afero.Fs
	path  string
	db    *sql.DB
	ready bool
}

// Path returns the journal location for a project root.
func Path(root string) string {
	return filepath.Join(root, DirName, FileName)
}

// New returns a journal stored at path.
func New(fsys afero.Fs, path string) *Journal {
	return &Journal{fs: fsys, path: path}
}

// NewWithDB returns a journal backed by an already opened database.
func NewWithDB(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) open(ctx context.Context) error {
	if j.db == nil {
		if err := j.fs.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
		db, err := sql.Open("sqlite3", j.path)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		j.db = db
	}
	if !j.ready {
		if _, err := j.db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create history table: %w", err)
		}
		j.ready = true
	}
	return nil
}

// Record appends e to the journal, assigning an ID when it has none.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if err := j.open(ctx); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO history (id, command, from_state, to_state, outcome, error, started_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Command.String(), e.From.String(), e.To.String(), string(e.Outcome), e.Error,
		e.StartedAt.UnixNano(), int64(e.Duration),
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A project that never
// journaled anything has an empty history.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if j.db == nil {
		exists, err := afero.Exists(j.fs, j.path)
		if err != nil {
			return nil, fmt.Errorf("failed to check history: %w", err)
		}
		if !exists {
			return nil, nil
		}
	}
	if err := j.open(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, command, from_state, to_state, outcome, error, started_at, duration_ns
		 FROM history ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			command, from, to   string
			outcome             string
			startedAt, duration int64
		)
		if err := rows.Scan(&e.ID, &command, &from, &to, &outcome, &e.Error, &startedAt, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if e.Command, err = lifecycle.ParseCommand(command); err != nil {
			return nil, err
		}
		if e.From, err = lifecycle.ParseState(from); err != nil {
			return nil, err
		}
		if e.To, err = lifecycle.ParseState(to); err != nil {
			return nil, err
		}
		e.Outcome = Outcome(outcome)
		e.StartedAt = time.Unix(0, startedAt)
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle, if one was opened.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}
