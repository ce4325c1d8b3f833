package voice

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func shRecognizer(t *testing.T, script string) *CommandRecognizer {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return NewCommandRecognizer(domain.VoiceSettings{Command: "sh", Args: []string{"-c", script}}, logger.NewNop())
}

func collect(t *testing.T, events <-chan domain.VoiceEvent) []domain.VoiceEvent {
	t.Helper()
	var out []domain.VoiceEvent
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("event stream did not close")
		}
	}
}

func kinds(events []domain.VoiceEvent) []domain.VoiceEventKind {
	out := make([]domain.VoiceEventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestUnavailableWithoutCommand(t *testing.T) {
	r := NewCommandRecognizer(domain.VoiceSettings{}, logger.NewNop())

	_, err := r.Start(context.Background())

	var unavailable *domain.VoiceUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestUnavailableWhenCommandMissing(t *testing.T) {
	r := NewCommandRecognizer(domain.VoiceSettings{Command: "maildraft-no-such-transcriber"}, logger.NewNop())

	var unavailable *domain.VoiceUnavailableError
	require.ErrorAs(t, r.Available(), &unavailable)
	assert.Contains(t, unavailable.Error(), "not found")
}

func TestTranscriptsThenEnd(t *testing.T) {
	r := shRecognizer(t, "echo 'invite Tom to dinner'; echo; echo 'on Friday'")

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	got := collect(t, events)

	assert.Equal(t, []domain.VoiceEventKind{domain.VoiceTranscript, domain.VoiceTranscript, domain.VoiceEnd}, kinds(got))
	assert.Equal(t, "invite Tom to dinner", got[0].Text)
	assert.Equal(t, "on Friday", got[1].Text)
}

func TestFailureEmitsErrorThenEnd(t *testing.T) {
	r := shRecognizer(t, "echo partial; exit 3")

	events, err := r.Start(context.Background())
	require.NoError(t, err)
	got := collect(t, events)

	assert.Equal(t, []domain.VoiceEventKind{domain.VoiceTranscript, domain.VoiceError, domain.VoiceEnd}, kinds(got))
	assert.Error(t, got[1].Err)
}

func TestEndWithoutTranscript(t *testing.T) {
	r := shRecognizer(t, "true")

	events, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.VoiceEventKind{domain.VoiceEnd}, kinds(collect(t, events)))
}

func TestStopEndsRecordingWithoutError(t *testing.T) {
	r := shRecognizer(t, "exec sleep 30")

	events, err := r.Start(context.Background())
	require.NoError(t, err)

	_, err = r.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrRecordingActive)

	require.NoError(t, r.Stop())
	assert.Equal(t, []domain.VoiceEventKind{domain.VoiceEnd}, kinds(collect(t, events)))

	assert.ErrorIs(t, r.Stop(), domain.ErrNotRecording)
}
