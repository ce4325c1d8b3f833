package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt TEXT NOT NULL,
	email TEXT NOT NULL,
	timestamp TEXT NOT NULL
);`

// SQLiteStore persists the interaction log in a SQLite database. The cap is
// enforced inside the insert transaction.
type SQLiteStore struct {
	path string
	log  ports.Logger
	now  func() time.Time

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the database at path. The database
// is opened lazily on first use.
func NewSQLiteStore(path string, log ports.Logger) *SQLiteStore {
	return &SQLiteStore{path: path, log: log, now: time.Now}
}

// Initialize opens the database and creates the schema. It is idempotent.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx)
}

func (s *SQLiteStore) initLocked(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return &domain.StorageError{Op: "initialize", Path: s.path, Err: err}
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return &domain.StorageError{Op: "initialize", Path: s.path, Err: err}
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return &domain.StorageError{Op: "initialize", Path: s.path, Err: err}
	}
	s.db = db
	return nil
}

// Append inserts an entry and prunes rows beyond domain.MaxHistoryEntries in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, prompt, email string) (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return domain.HistoryEntry{}, err
	}

	entry := domain.HistoryEntry{
		Prompt:    prompt,
		Email:     email,
		Timestamp: s.now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.HistoryEntry{}, &domain.StorageError{Op: "append", Path: s.path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries (prompt, email, timestamp) VALUES (?, ?, ?)`,
		entry.Prompt, entry.Email, entry.Timestamp.Format(time.RFC3339Nano),
	); err != nil {
		return domain.HistoryEntry{}, &domain.StorageError{Op: "append", Path: s.path, Err: err}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE id NOT IN (SELECT id FROM entries ORDER BY id DESC LIMIT ?)`,
		domain.MaxHistoryEntries,
	); err != nil {
		return domain.HistoryEntry{}, &domain.StorageError{Op: "append", Path: s.path, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return domain.HistoryEntry{}, &domain.StorageError{Op: "append", Path: s.path, Err: err}
	}
	return entry, nil
}

// Load returns the newest entries first; any failure yields an empty log.
func (s *SQLiteStore) Load(ctx context.Context) []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked(ctx)
	if err != nil {
		s.log.Warn("history unreadable, using empty log", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return []domain.HistoryEntry{}
	}
	return entries
}

func (s *SQLiteStore) loadLocked(ctx context.Context) ([]domain.HistoryEntry, error) {
	if err := s.initLocked(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt, email, timestamp FROM entries ORDER BY id DESC LIMIT ?`,
		domain.MaxHistoryEntries,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var entry domain.HistoryEntry
		var ts string
		if err := rows.Scan(&entry.Prompt, &entry.Email, &ts); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		entry.Timestamp = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear deletes all entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return &domain.StorageError{Op: "clear", Path: s.path, Err: err}
	}
	return nil
}

// Export writes the log to dest as a JSON array.
func (s *SQLiteStore) Export(ctx context.Context, dest string) error {
	return exportEntries(dest, s.Load(ctx))
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var _ ports.HistoryStore = (*SQLiteStore)(nil)
