package history

import (
	"fmt"
	"path/filepath"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

// NewStore picks the history driver configured in cfg.
func NewStore(cfg domain.Config, log ports.Logger) (ports.HistoryStore, error) {
	switch cfg.History.Driver {
	case "", domain.HistoryDriverJSON:
		return NewFileStore(filepath.Join(cfg.DataDir, domain.HistoryFileName), log), nil
	case domain.HistoryDriverSQLite:
		return NewSQLiteStore(filepath.Join(cfg.DataDir, domain.HistoryDBFileName), log), nil
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.History.Driver)
	}
}
