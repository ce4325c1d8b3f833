package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/maildraft/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir must be set")
	}
	if err := validateBackend(cfg.Backend); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	return nil
}

func validateBackend(b domain.BackendSettings) error {
	if strings.TrimSpace(b.Interpreter) == "" {
		return errors.New("backend.interpreter must be set")
	}
	if strings.TrimSpace(b.ReadyMarker) == "" {
		return errors.New("backend.ready_marker must be set")
	}
	if strings.TrimSpace(b.Endpoint) == "" {
		return errors.New("backend.endpoint must be set")
	}
	if err := validateDuration("backend.startup_timeout", b.StartupTimeout); err != nil {
		return err
	}
	if err := validateDuration("backend.request_timeout", b.RequestTimeout); err != nil {
		return err
	}
	return nil
}

func validateDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s invalid: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be > 0", key)
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	switch history.Driver {
	case "", domain.HistoryDriverJSON, domain.HistoryDriverSQLite:
		return nil
	default:
		return fmt.Errorf("history.driver must be %s|%s, got %s", domain.HistoryDriverJSON, domain.HistoryDriverSQLite, history.Driver)
	}
}
