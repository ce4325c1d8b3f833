package voice

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

// CommandRecognizer captures speech through an external transcriber that
// prints one transcript per stdout line.
type CommandRecognizer struct {
	command  string
	args     []string
	log      ports.Logger
	lookPath func(string) (string, error)

	mu     sync.Mutex
	active context.CancelFunc
}

// NewCommandRecognizer builds a recognizer from voice settings.
func NewCommandRecognizer(cfg domain.VoiceSettings, log ports.Logger) *CommandRecognizer {
	return &CommandRecognizer{
		command:  cfg.Command,
		args:     cfg.Args,
		log:      log,
		lookPath: exec.LookPath,
	}
}

// Available reports a *domain.VoiceUnavailableError when no transcriber can run.
func (r *CommandRecognizer) Available() error {
	if strings.TrimSpace(r.command) == "" {
		return &domain.VoiceUnavailableError{Reason: "no transcriber command configured (voice.command)"}
	}
	if _, err := r.lookPath(r.command); err != nil {
		return &domain.VoiceUnavailableError{Reason: fmt.Sprintf("transcriber %q not found: %v", r.command, err)}
	}
	return nil
}

// Start begins a recording. The returned channel yields transcript events,
// at most one error event, and always a final end event before it is closed.
// Callers must drain it until closed.
func (r *CommandRecognizer) Start(ctx context.Context) (<-chan domain.VoiceEvent, error) {
	if err := r.Available(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, domain.ErrRecordingActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, r.command, r.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("transcriber stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start transcriber: %w", err)
	}
	r.active = cancel
	r.log.Info("recording started", map[string]interface{}{"command": r.command})

	events := make(chan domain.VoiceEvent, 8)
	go func() {
		defer close(events)
		defer r.finish(cancel)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			events <- domain.VoiceEvent{Kind: domain.VoiceTranscript, Text: text}
		}
		if err := cmd.Wait(); err != nil && runCtx.Err() == nil {
			r.log.Warn("transcriber failed", map[string]interface{}{"error": err.Error()})
			events <- domain.VoiceEvent{Kind: domain.VoiceError, Err: fmt.Errorf("transcriber: %w", err)}
		}
		events <- domain.VoiceEvent{Kind: domain.VoiceEnd}
	}()
	return events, nil
}

// Stop ends the current recording. Stopping is not reported as an error event.
func (r *CommandRecognizer) Stop() error {
	r.mu.Lock()
	cancel := r.active
	r.mu.Unlock()
	if cancel == nil {
		return domain.ErrNotRecording
	}
	cancel()
	return nil
}

func (r *CommandRecognizer) finish(cancel context.CancelFunc) {
	cancel()
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
	r.log.Info("recording stopped", nil)
}

var _ ports.VoiceRecognizer = (*CommandRecognizer)(nil)
