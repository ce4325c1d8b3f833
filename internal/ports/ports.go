// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The assistant core depends only on these interfaces;
// concrete implementations (JSON or SQLite history, the supervised backend process,
// the external transcriber) live in the infrastructure layer.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., HistoryStore, BackendSupervisor)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/maildraft/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.maildraft/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// HistoryStore is the durable, bounded, most-recent-first interaction log.
//
// Initialize, Append and Clear fail with *domain.StorageError and never leave a
// partially written log behind. Load is best-effort: it returns an empty slice
// instead of failing.
type HistoryStore interface {
	Initialize(ctx context.Context) error
	Append(ctx context.Context, prompt, email string) (domain.HistoryEntry, error)
	Load(ctx context.Context) []domain.HistoryEntry
	Clear(ctx context.Context) error
	Export(ctx context.Context, dest string) error
	Path() string
}

// SettingsStore persists user toggles. Load falls back to defaults.
type SettingsStore interface {
	Load(ctx context.Context) domain.Settings
	Save(ctx context.Context, settings domain.Settings) error
}

// BackendSupervisor owns the lifecycle of the external generation process.
type BackendSupervisor interface {
	EnsureReady(ctx context.Context) error
	Shutdown(ctx context.Context) error
	State() domain.BackendState
}

// GenerationClient sends a prompt to a ready backend and returns the email body.
// Failures are reported as *domain.GenerationError.
type GenerationClient interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (string, error)
}

// VoiceRecognizer captures speech and streams transcript events.
type VoiceRecognizer interface {
	Start(ctx context.Context) (<-chan domain.VoiceEvent, error)
	Stop() error
	Available() error
}

// Clipboard provides cross-platform clipboard integration for copying drafts.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
