package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/pkg/filesystem"
	"github.com/doeshing/maildraft/internal/ports"
)

// FileStore keeps user settings in settings.json.
type FileStore struct {
	path string
	log  ports.Logger
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, log ports.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Load returns the stored settings; absent keys keep their defaults and an
// unreadable file yields the defaults.
func (s *FileStore) Load(ctx context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("settings unreadable, using defaults", map[string]interface{}{"path": s.path, "error": err.Error()})
		}
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		s.log.Warn("settings corrupt, using defaults", map[string]interface{}{"path": s.path, "error": err.Error()})
		return domain.DefaultSettings()
	}
	if settings.Validate() != nil {
		settings.Theme = domain.ThemeLight
	}
	return settings
}

// Save validates and atomically writes settings.
func (s *FileStore) Save(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return &domain.StorageError{Op: "save settings", Path: s.path, Err: err}
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := filesystem.WriteFileAtomic(s.path, append(data, '\n'), domain.FilePermissions); err != nil {
		return &domain.StorageError{Op: "save settings", Path: s.path, Err: err}
	}
	return nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

var _ ports.SettingsStore = (*FileStore)(nil)
