package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	appconfig "github.com/doeshing/maildraft/internal/application/config"
	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	HistoryStore   ports.HistoryStore
	SettingsStore  ports.SettingsStore
	Supervisor     ports.BackendSupervisor
	Voice          ports.VoiceRecognizer

	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, s.historyCheck(ctx))

	if s.SettingsStore != nil {
		settings := s.SettingsStore.Load(ctx)
		checks = append(checks, ok("Settings", fmt.Sprintf("save history: %t, suggestions: %t, theme: %s",
			settings.SaveToHistory, settings.AISuggestions, settings.Theme)))
	}

	checks = append(checks, s.interpreterCheck(cfg.Backend), s.scriptCheck(cfg.Backend))

	if s.Voice != nil {
		if err := s.Voice.Available(); err != nil {
			checks = append(checks, warn("Voice input", err.Error()))
		} else {
			checks = append(checks, ok("Voice input", cfg.Voice.Command))
		}
	}

	if s.Supervisor != nil {
		checks = append(checks, ok("Backend", fmt.Sprintf("%s (%s)", s.Supervisor.State(), cfg.Backend.Endpoint)))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) historyCheck(ctx context.Context) domain.HealthCheck {
	if s.HistoryStore == nil {
		return warn("History", "history store not initialized")
	}
	if err := s.HistoryStore.Initialize(ctx); err != nil {
		return fail("History", err.Error())
	}
	entries := s.HistoryStore.Load(ctx)
	return ok("History", fmt.Sprintf("%d/%d entries at %s", len(entries), domain.MaxHistoryEntries, s.HistoryStore.Path()))
}

func (s *Service) interpreterCheck(b domain.BackendSettings) domain.HealthCheck {
	lookPath := s.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(b.Interpreter)
	if err != nil {
		return fail("Interpreter", fmt.Sprintf("%s not found (set PYTHON_PATH)", b.Interpreter))
	}
	return ok("Interpreter", path)
}

func (s *Service) scriptCheck(b domain.BackendSettings) domain.HealthCheck {
	stat := s.stat
	if stat == nil {
		stat = os.Stat
	}
	script := b.Script
	if !filepath.IsAbs(script) && b.WorkingDir != "" {
		script = filepath.Join(b.WorkingDir, script)
	}
	info, err := stat(script)
	if err != nil {
		return fail("Backend script", fmt.Sprintf("%s: %v", script, err))
	}
	if info.IsDir() {
		return fail("Backend script", fmt.Sprintf("%s is a directory", script))
	}
	return ok("Backend script", script)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
