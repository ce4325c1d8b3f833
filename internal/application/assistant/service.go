package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

// Service is the host-facing boundary: it sequences backend readiness,
// generation and history recording, and exposes history and voice controls.
type Service struct {
	Supervisor ports.BackendSupervisor
	Client     ports.GenerationClient
	History    ports.HistoryStore
	Settings   ports.SettingsStore
	Voice      ports.VoiceRecognizer
	Logger     ports.Logger

	// StartupTimeout bounds EnsureReady; zero means no extra bound.
	StartupTimeout time.Duration
	// RequestTimeout bounds the generation call; zero means no extra bound.
	RequestTimeout time.Duration
}

// Generate runs one generation end to end. It never returns a bare error or
// panics: failures come back as a result with error status. A failure to
// record history is logged and does not change the outcome.
func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (result domain.GenerationResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			if s.Logger != nil {
				s.Logger.Error("generate panicked", err, nil)
			}
			result = domain.Failure(err)
		}
	}()

	if s.Supervisor == nil || s.Client == nil || s.Logger == nil {
		return domain.Failure(errors.New("assistant.Service dependencies not satisfied"))
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return domain.Failure(domain.ErrEmptyPrompt)
	}

	requestID := uuid.NewString()
	settings := s.loadSettings(ctx)
	hints := req.Context
	if settings.AISuggestions {
		hints = hints.Merge(InferContext(prompt))
	}

	if err := s.ensureReady(ctx); err != nil {
		s.Logger.Error("backend not ready", err, map[string]interface{}{"request_id": requestID})
		return domain.Failure(err)
	}

	s.Logger.Info("generating email", map[string]interface{}{
		"request_id": requestID,
		"prompt_len": len(prompt),
		"tone":       hints.Tone,
	})

	email, err := s.generate(ctx, domain.GenerateRequest{Prompt: prompt, Context: hints})
	if err != nil {
		s.Logger.Error("generation failed", err, map[string]interface{}{"request_id": requestID})
		return domain.Failure(err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Failure(err)
	}

	if settings.SaveToHistory && s.History != nil {
		if _, err := s.History.Append(ctx, prompt, email); err != nil {
			s.Logger.Error("history append failed", err, map[string]interface{}{"request_id": requestID})
		}
	}

	return domain.Success(email)
}

// LoadHistory returns the recorded interactions, most recent first. It never fails.
func (s *Service) LoadHistory(ctx context.Context) []domain.HistoryEntry {
	if s.History == nil {
		return []domain.HistoryEntry{}
	}
	return s.History.Load(ctx)
}

// ClearHistory empties the history. Storage failures are returned as errors.
func (s *Service) ClearHistory(ctx context.Context) (domain.GenerationResult, error) {
	if s.History == nil {
		return domain.GenerationResult{}, &domain.StorageError{Op: "clear", Err: errors.New("history store unavailable")}
	}
	if err := s.History.Clear(ctx); err != nil {
		return domain.GenerationResult{}, err
	}
	return domain.GenerationResult{Status: domain.StatusSuccess}, nil
}

// StartRecording begins voice capture.
func (s *Service) StartRecording(ctx context.Context) (<-chan domain.VoiceEvent, error) {
	if s.Voice == nil {
		return nil, &domain.VoiceUnavailableError{Reason: "voice capture not configured"}
	}
	return s.Voice.Start(ctx)
}

// StopRecording ends voice capture.
func (s *Service) StopRecording() error {
	if s.Voice == nil {
		return &domain.VoiceUnavailableError{Reason: "voice capture not configured"}
	}
	return s.Voice.Stop()
}

// Shutdown stops the backend process if one is running.
func (s *Service) Shutdown(ctx context.Context) error {
	if s.Supervisor == nil {
		return nil
	}
	return s.Supervisor.Shutdown(ctx)
}

func (s *Service) ensureReady(ctx context.Context) error {
	if s.StartupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.StartupTimeout)
		defer cancel()
	}
	return s.Supervisor.EnsureReady(ctx)
}

func (s *Service) generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	if s.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
		defer cancel()
	}
	return s.Client.Generate(ctx, req)
}

func (s *Service) loadSettings(ctx context.Context) domain.Settings {
	if s.Settings == nil {
		return domain.DefaultSettings()
	}
	return s.Settings.Load(ctx)
}
