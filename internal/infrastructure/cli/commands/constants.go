package commands

// Display defaults
const (
	// DefaultHistoryLimit is the number of entries history list shows
	DefaultHistoryLimit = 10
	// PreviewWidth bounds prompt and email previews in list output
	PreviewWidth = 60
	// TimestampFormat is used for absolute timestamps in list output
	TimestampFormat = "2006-01-02 15:04"
)

// AnnotationSkipInit marks commands that run without loading the services.
const AnnotationSkipInit = "maildraft/skip-init"

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrSettingsStoreUnavailable = "settings store unavailable"
	ErrKeyRequired              = "--key is required"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgHistoryCleared           = "History cleared."
	MsgClearCancelled           = "Clear cancelled."
)
