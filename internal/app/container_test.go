package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/maildraft/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBuildContainerWiresComponents(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, "data_dir: "+dataDir+"\nhistory:\n  driver: sqlite\n")

	c, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	assert.Equal(t, filepath.Join(dataDir, domain.HistoryDBFileName), c.HistoryStore.Path())
	assert.Equal(t, filepath.Join(dataDir, domain.SettingsFileName), c.SettingsStore.Path())
	assert.Equal(t, domain.BackendStopped, c.Supervisor.State())
	assert.Equal(t, domain.DefaultBackendStartupTimeout, c.Assistant.StartupTimeout)
	assert.Empty(t, c.Assistant.LoadHistory(context.Background()))
}

func TestBuildContainerRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "data_dir: "+t.TempDir()+"\nhistory:\n  driver: postgres\n")

	_, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	require.Error(t, err)
}

func TestNewContainerDefersConfigLoading(t *testing.T) {
	path := writeConfig(t, "history:\n  driver: postgres\n")

	c := NewContainer(Options{ConfigPath: path})
	assert.Equal(t, path, c.ConfigLoader.Path())
	assert.Nil(t, c.Supervisor)
	require.NoError(t, c.Close(context.Background()))

	require.Error(t, c.Init(context.Background()))
	assert.Nil(t, c.Assistant)
	require.NoError(t, c.Close(context.Background()))
}
