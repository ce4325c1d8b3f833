package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrRecordingActive = errors.New("a recording is already in progress")
	ErrNotRecording    = errors.New("no recording in progress")
)

// StorageError reports an unreadable or unwritable persistence medium on a
// strict path (initialize, append, clear).
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// BackendStartError reports that the backend process never became ready.
type BackendStartError struct {
	Command string
	Err     error
}

func (e *BackendStartError) Error() string {
	return fmt.Sprintf("backend start %q: %v", e.Command, e.Err)
}

func (e *BackendStartError) Unwrap() error { return e.Err }

// GenerationError reports a reachable backend that failed or timed out.
type GenerationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("generation failed: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("generation failed: backend returned %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("generation failed: %s", e.Message)
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }

// VoiceUnavailableError reports a missing speech-capture dependency.
type VoiceUnavailableError struct {
	Reason string
}

func (e *VoiceUnavailableError) Error() string {
	return "voice capture unavailable: " + e.Reason
}
