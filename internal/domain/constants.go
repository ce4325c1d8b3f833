package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// FilePermissions is the permission for history and settings files (rw-r--r--)
	FilePermissions = 0o644
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Backend defaults
const (
	DefaultBackendInterpreter    = "python"
	DefaultBackendScript         = "app.py"
	DefaultBackendReadyMarker    = "Application startup complete"
	DefaultBackendEndpoint       = "http://localhost:5002/generate-email"
	DefaultBackendStartupTimeout = 60 * time.Second
	DefaultBackendRequestTimeout = 120 * time.Second
	// DefaultShutdownGrace bounds how long shutdown waits for the process to exit.
	DefaultShutdownGrace = 5 * time.Second
)

// History drivers
const (
	HistoryDriverJSON   = "json"
	HistoryDriverSQLite = "sqlite"
)

// File names under the data directory
const (
	HistoryFileName   = "history.json"
	HistoryDBFileName = "history.db"
	SettingsFileName  = "settings.json"
	ConfigFileName    = "config.yaml"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
