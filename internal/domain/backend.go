package domain

// BackendState is the supervisor's view of the backend process.
type BackendState string

const (
	BackendStopped  BackendState = "stopped"
	BackendStarting BackendState = "starting"
	BackendReady    BackendState = "ready"
)
