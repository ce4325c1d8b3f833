package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/infrastructure/history"
	"github.com/doeshing/maildraft/internal/infrastructure/settings"
	"github.com/doeshing/maildraft/internal/pkg/logger"
)

type staticConfig struct {
	cfg domain.Config
	err error
}

func (s staticConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stoppedSupervisor struct{}

func (stoppedSupervisor) EnsureReady(context.Context) error { return nil }
func (stoppedSupervisor) Shutdown(context.Context) error    { return nil }
func (stoppedSupervisor) State() domain.BackendState        { return domain.BackendStopped }

func testConfig(dir string) domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		DataDir:             dir,
		Backend: domain.BackendSettings{
			Interpreter:    "python",
			Script:         "app.py",
			WorkingDir:     dir,
			ReadyMarker:    domain.DefaultBackendReadyMarker,
			Endpoint:       domain.DefaultBackendEndpoint,
			StartupTimeout: "60s",
			RequestTimeout: "120s",
		},
		History: domain.HistorySettings{Driver: domain.HistoryDriverJSON},
	}
}

func statuses(report domain.HealthReport) map[string]domain.HealthStatus {
	out := make(map[string]domain.HealthStatus, len(report.Checks))
	for _, check := range report.Checks {
		out[check.Name] = check.Status
	}
	return out
}

func TestRunHealthyEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("print('hi')\n"), 0o644))

	svc := &Service{
		ConfigProvider: staticConfig{cfg: testConfig(dir)},
		HistoryStore:   history.NewFileStore(filepath.Join(dir, domain.HistoryFileName), logger.NewNop()),
		SettingsStore:  settings.NewFileStore(filepath.Join(dir, domain.SettingsFileName), logger.NewNop()),
		Supervisor:     stoppedSupervisor{},
		lookPath:       func(string) (string, error) { return "/usr/bin/python", nil },
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.HealthStatus{
		"Config file":    domain.HealthOK,
		"History":        domain.HealthOK,
		"Settings":       domain.HealthOK,
		"Interpreter":    domain.HealthOK,
		"Backend script": domain.HealthOK,
		"Backend":        domain.HealthOK,
	}, statuses(report))

	_, err = os.Stat(filepath.Join(dir, domain.HistoryFileName))
	assert.NoError(t, err)
}

func TestRunReportsMissingPieces(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Backend.StartupTimeout = "soon"

	svc := &Service{
		ConfigProvider: staticConfig{cfg: cfg},
		lookPath:       func(string) (string, error) { return "", errors.New("not found") },
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	got := statuses(report)
	assert.Equal(t, domain.HealthError, got["Config file"])
	assert.Equal(t, domain.HealthWarn, got["History"])
	assert.Equal(t, domain.HealthError, got["Interpreter"])
	assert.Equal(t, domain.HealthError, got["Backend script"])
}

func TestRunStopsWhenConfigFails(t *testing.T) {
	svc := &Service{ConfigProvider: staticConfig{err: errors.New("bad yaml")}}

	report, err := svc.Run(context.Background())
	require.Error(t, err)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, domain.HealthError, report.Checks[0].Status)
}
