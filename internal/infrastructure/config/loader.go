package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/maildraft/assets"
	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/pkg/filesystem"
	"github.com/doeshing/maildraft/internal/ports"
)

// FileLoader loads YAML configuration from ~/.maildraft/config.yaml (overridable via MAILDRAFT_CONFIG).
type FileLoader struct {
	overridePath string
	getenv       func(string) string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, getenv: os.Getenv}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, err
		}
		if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
			return domain.Config{}, err
		}
		data = assets.DefaultConfigYAML
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return l.applyEnv(hydrateDefaults(cfg)), nil
}

// Save writes cfg back to the config file.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(path, raw, domain.SecureFilePermissions)
}

// Backup copies the current config file next to itself with a .bak suffix
// and returns the backup path.
func (l *FileLoader) Backup() (string, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := path + ".bak"
	if err := filesystem.WriteFileAtomic(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// Path resolves the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := l.getenv("MAILDRAFT_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".maildraft", domain.ConfigFileName)
}

func (l *FileLoader) applyEnv(cfg domain.Config) domain.Config {
	if python := l.getenv("PYTHON_PATH"); python != "" {
		cfg.Backend.Interpreter = python
	}
	return cfg
}

// Defaults returns the embedded default configuration, hydrated.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(filesystem.UserHomeDir(), ".maildraft")
	}
	cfg.DataDir = filesystem.ExpandPath(cfg.DataDir)
	if cfg.Backend.Interpreter == "" {
		cfg.Backend.Interpreter = domain.DefaultBackendInterpreter
	}
	if cfg.Backend.Script == "" {
		cfg.Backend.Script = domain.DefaultBackendScript
	}
	if cfg.Backend.ReadyMarker == "" {
		cfg.Backend.ReadyMarker = domain.DefaultBackendReadyMarker
	}
	if cfg.Backend.Endpoint == "" {
		cfg.Backend.Endpoint = domain.DefaultBackendEndpoint
	}
	if cfg.Backend.StartupTimeout == "" {
		cfg.Backend.StartupTimeout = domain.DefaultBackendStartupTimeout.String()
	}
	if cfg.Backend.RequestTimeout == "" {
		cfg.Backend.RequestTimeout = domain.DefaultBackendRequestTimeout.String()
	}
	if cfg.History.Driver == "" {
		cfg.History.Driver = domain.HistoryDriverJSON
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
