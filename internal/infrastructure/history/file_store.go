package history

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/pkg/filesystem"
	"github.com/doeshing/maildraft/internal/ports"
)

// FileStore keeps the interaction log as a JSON array in a single file.
type FileStore struct {
	path string
	log  ports.Logger
	now  func() time.Time

	// writeFile is swapped in tests to simulate a failing medium.
	writeFile func(path string, data []byte, perm os.FileMode) error

	mu          sync.Mutex
	initialized bool
}

// NewFileStore creates a store backed by path (usually <data_dir>/history.json).
func NewFileStore(path string, log ports.Logger) *FileStore {
	return &FileStore{
		path:      path,
		log:       log,
		now:       time.Now,
		writeFile: filesystem.WriteFileAtomic,
	}
}

// Initialize creates an empty log file if none exists. It is idempotent.
func (f *FileStore) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initLocked(ctx)
}

func (f *FileStore) initLocked(ctx context.Context) error {
	if f.initialized {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return &domain.StorageError{Op: "initialize", Path: f.path, Err: err}
	}
	if _, err := os.Stat(f.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return &domain.StorageError{Op: "initialize", Path: f.path, Err: err}
		}
		if err := f.persist([]domain.HistoryEntry{}); err != nil {
			return &domain.StorageError{Op: "initialize", Path: f.path, Err: err}
		}
	}
	f.initialized = true
	return nil
}

// Append records a new entry at the front of the log and drops anything past
// domain.MaxHistoryEntries. The whole read-modify-write runs under the store lock.
func (f *FileStore) Append(ctx context.Context, prompt, email string) (domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.initLocked(ctx); err != nil {
		return domain.HistoryEntry{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.HistoryEntry{}, err
	}

	entry := domain.HistoryEntry{
		Prompt:    prompt,
		Email:     email,
		Timestamp: f.now().UTC(),
	}
	entries := domain.PrependEntry(f.readLocked(), entry)
	if err := f.persist(entries); err != nil {
		return domain.HistoryEntry{}, &domain.StorageError{Op: "append", Path: f.path, Err: err}
	}

	f.log.Debug("history entry appended", map[string]interface{}{
		"entries": len(entries),
		"path":    f.path,
	})
	return entry, nil
}

// Load returns the log most-recent-first. Missing or corrupt files yield an empty log.
func (f *FileStore) Load(ctx context.Context) []domain.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.initLocked(ctx); err != nil {
		f.log.Warn("history initialize failed", map[string]interface{}{"error": err.Error()})
	}
	return f.readLocked()
}

// Clear replaces the log with an empty one. Clearing an empty log is a no-op success.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.initLocked(ctx); err != nil {
		return err
	}
	if err := f.persist([]domain.HistoryEntry{}); err != nil {
		return &domain.StorageError{Op: "clear", Path: f.path, Err: err}
	}
	return nil
}

// Export writes the current log to dest in the same JSON array format.
func (f *FileStore) Export(ctx context.Context, dest string) error {
	return exportEntries(dest, f.Load(ctx))
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) readLocked() []domain.HistoryEntry {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.log.Warn("history unreadable, using empty log", map[string]interface{}{
				"path":  f.path,
				"error": err.Error(),
			})
		}
		return []domain.HistoryEntry{}
	}
	entries, err := f.decodeLocked(data)
	if err != nil {
		f.log.Warn("history corrupt, using empty log", map[string]interface{}{
			"path":  f.path,
			"error": err.Error(),
		})
		return []domain.HistoryEntry{}
	}
	if entries == nil {
		return []domain.HistoryEntry{}
	}
	if len(entries) > domain.MaxHistoryEntries {
		entries = entries[:domain.MaxHistoryEntries]
	}
	return entries
}

// storedEntry is the on-disk shape of an entry; the timestamp is parsed per entry.
type storedEntry struct {
	Prompt    string `json:"prompt"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

// timestampLayouts are tried in order when reading entries back.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// decodeLocked decodes the array element by element. Elements that are not
// entry objects are dropped; entries with an unrecognised timestamp are kept
// with a zero time.
func (f *FileStore) decodeLocked(data []byte) ([]domain.HistoryEntry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	entries := make([]domain.HistoryEntry, 0, len(raw))
	for i, item := range raw {
		var stored storedEntry
		if string(item) == "null" {
			continue
		}
		if err := json.Unmarshal(item, &stored); err != nil {
			f.log.Warn("history entry skipped", map[string]interface{}{"index": i, "error": err.Error()})
			continue
		}
		ts, ok := parseTimestamp(stored.Timestamp)
		if !ok {
			f.log.Warn("history entry timestamp unrecognised", map[string]interface{}{"index": i, "timestamp": stored.Timestamp})
		}
		entries = append(entries, domain.HistoryEntry{Prompt: stored.Prompt, Email: stored.Email, Timestamp: ts})
	}
	return entries, nil
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func (f *FileStore) persist(entries []domain.HistoryEntry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return f.writeFile(f.path, data, domain.FilePermissions)
}

func encodeEntries(entries []domain.HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func exportEntries(dest string, entries []domain.HistoryEntry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(dest, data, domain.FilePermissions)
}

var _ ports.HistoryStore = (*FileStore)(nil)
