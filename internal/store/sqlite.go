package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/amishk599/tailorin/internal/panel"
)

// ErrLocked is returned when another tailorin process holds the transcript.
var ErrLocked = errors.New("transcript is in use by another process")

// Ensure SQLiteStore implements panel.Transcript.
var _ panel.Transcript = (*SQLiteStore)(nil)

// Record is a stored chat entry with the session it belongs to.
type Record struct {
	Session string
	Entry   panel.Entry
}

// SQLiteStore keeps the chat transcript in a SQLite database. A sibling
// .lock file guards it: one writer, or any number of readers.
type SQLiteStore struct {
	db      *sql.DB
	lock    *flock.Flock
	session string
}

// NewSQLiteStore opens (or creates) the transcript at dbPath for writing
// entries tagged with session. It fails with ErrLocked if another process
// has the transcript open.
func NewSQLiteStore(dbPath, session string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating transcript dir: %w", err)
	}
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking transcript: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	s, err := open(dbPath, lock)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	s.session = session
	return s, nil
}

// OpenReadOnly opens the transcript at dbPath for reading. Readers share
// the lock with each other but not with a writer.
func OpenReadOnly(dbPath string) (*SQLiteStore, error) {
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryRLock()
	if err != nil {
		return nil, fmt.Errorf("locking transcript: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	s, err := open(dbPath, lock)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	return s, nil
}

func open(dbPath string, lock *flock.Flock) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS chat_entries (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		sender  TEXT NOT NULL,
		text    TEXT NOT NULL,
		at_ms   INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chat_entries table: %w", err)
	}

	return &SQLiteStore{db: db, lock: lock}, nil
}

// Append records one chat entry under the store's session.
func (s *SQLiteStore) Append(ctx context.Context, e panel.Entry) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_entries (session, sender, text, at_ms) VALUES (?, ?, ?, ?)",
		s.session, string(e.Sender), e.Text, e.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("appending %s entry: %w", e.Sender, err)
	}
	return nil
}

// History returns the most recent limit entries, oldest first. A limit of
// zero or less returns everything.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT session, sender, text, at_ms FROM (
		SELECT id, session, sender, text, at_ms FROM chat_entries ORDER BY id DESC LIMIT ?
	) ORDER BY id ASC`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transcript: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r      Record
			sender string
			atMS   int64
		)
		if err := rows.Scan(&r.Session, &sender, &r.Entry.Text, &atMS); err != nil {
			return nil, fmt.Errorf("scanning transcript row: %w", err)
		}
		r.Entry.Sender = panel.Sender(sender)
		r.Entry.At = time.UnixMilli(atMS)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return out, nil
}

// Cleanup deletes entries older than the given duration and reports how many went.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	res, err := s.db.ExecContext(ctx, "DELETE FROM chat_entries WHERE at_ms < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up entries older than %v: %w", olderThan, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the database and releases the lock.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = fmt.Errorf("unlocking transcript: %w", uerr)
	}
	return err
}
