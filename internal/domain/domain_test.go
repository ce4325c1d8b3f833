package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(n int) []HistoryEntry {
	out := make([]HistoryEntry, n)
	for i := range out {
		out[i] = HistoryEntry{Prompt: fmt.Sprintf("P%d", i)}
	}
	return out
}

func TestPrependEntry(t *testing.T) {
	got := PrependEntry(nil, HistoryEntry{Prompt: "first"})
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Prompt)

	log := entries(3)
	got = PrependEntry(log, HistoryEntry{Prompt: "new"})
	assert.Equal(t, []string{"new", "P0", "P1", "P2"}, []string{got[0].Prompt, got[1].Prompt, got[2].Prompt, got[3].Prompt})
	assert.Equal(t, "P0", log[0].Prompt)
}

func TestPrependEntryCaps(t *testing.T) {
	got := PrependEntry(entries(MaxHistoryEntries), HistoryEntry{Prompt: "new"})
	require.Len(t, got, MaxHistoryEntries)
	assert.Equal(t, "new", got[0].Prompt)
	assert.Equal(t, fmt.Sprintf("P%d", MaxHistoryEntries-2), got[MaxHistoryEntries-1].Prompt)

	got = PrependEntry(entries(MaxHistoryEntries+7), HistoryEntry{Prompt: "new"})
	assert.Len(t, got, MaxHistoryEntries)
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
	assert.NoError(t, Settings{Theme: ThemeDark}.Validate())
	assert.Error(t, Settings{Theme: "blue"}.Validate())
}

func TestEmailContextMerge(t *testing.T) {
	caller := EmailContext{Tone: "friendly"}
	merged := caller.Merge(EmailContext{Tone: "formal", Recipient: "Ana"})
	assert.Equal(t, EmailContext{Tone: "friendly", Recipient: "Ana"}, merged)
}

func TestGenerationResult(t *testing.T) {
	assert.True(t, Success("x").OK())
	failure := Failure(ErrEmptyPrompt)
	assert.False(t, failure.OK())
	assert.Equal(t, ErrEmptyPrompt.Error(), failure.Message)
}

func TestBackendTimeouts(t *testing.T) {
	assert.Equal(t, DefaultBackendStartupTimeout, BackendSettings{}.StartupTimeoutDuration())
	assert.Equal(t, 90*time.Second, BackendSettings{StartupTimeout: "90s"}.StartupTimeoutDuration())
	assert.Equal(t, DefaultBackendRequestTimeout, BackendSettings{RequestTimeout: "-1s"}.RequestTimeoutDuration())
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save: %w", &StorageError{Op: "append", Path: "/tmp/h.json", Err: cause})

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "append", storageErr.Op)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, &BackendStartError{Command: "python app.py", Err: cause}, cause)
}
