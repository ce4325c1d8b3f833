package app

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/doeshing/maildraft/internal/application/assistant"
	appconfig "github.com/doeshing/maildraft/internal/application/config"
	"github.com/doeshing/maildraft/internal/application/doctor"
	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/infrastructure/backend"
	"github.com/doeshing/maildraft/internal/infrastructure/config"
	"github.com/doeshing/maildraft/internal/infrastructure/history"
	"github.com/doeshing/maildraft/internal/infrastructure/settings"
	"github.com/doeshing/maildraft/internal/infrastructure/voice"
	"github.com/doeshing/maildraft/internal/pkg/logger"
	"github.com/doeshing/maildraft/internal/ports"
)

// Options tunes container construction.
type Options struct {
	// ConfigPath overrides the config file location.
	ConfigPath string
	// Verbose forces debug logging.
	Verbose bool
}

// Container wires up application services with infrastructure adapters.
// Only ConfigLoader is set until Init succeeds.
type Container struct {
	Config        domain.Config
	ConfigLoader  *config.FileLoader
	Assistant     *assistant.Service
	DoctorService *doctor.Service
	HistoryStore  ports.HistoryStore
	SettingsStore *settings.FileStore
	Supervisor    *backend.Supervisor
	Voice         *voice.CommandRecognizer
	Logger        *logger.ZapLogger

	opts        Options
	initialized bool
}

// NewContainer prepares a container without reading the configuration.
func NewContainer(opts Options) *Container {
	return &Container{ConfigLoader: config.NewFileLoader(opts.ConfigPath), opts: opts}
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	c := NewContainer(opts)
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Init loads and validates the configuration and wires the services.
// Calling it again after a success is a no-op.
func (c *Container) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	cfg, err := c.ConfigLoader.Load(ctx)
	if err != nil {
		return err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return err
	}

	level := cfg.Log.Level
	if c.opts.Verbose {
		level = "debug"
	}
	log := logger.New(level)

	historyStore, err := history.NewStore(cfg, log)
	if err != nil {
		return err
	}
	if err := historyStore.Initialize(ctx); err != nil {
		log.Warn("history unavailable", map[string]interface{}{"path": historyStore.Path(), "error": err.Error()})
	}

	settingsStore := settings.NewFileStore(filepath.Join(cfg.DataDir, domain.SettingsFileName), log)
	supervisor := backend.NewSupervisor(cfg.Backend, log)
	client := backend.NewHTTPClient(cfg.Backend.Endpoint, nil)
	recognizer := voice.NewCommandRecognizer(cfg.Voice, log)

	c.Assistant = &assistant.Service{
		Supervisor:     supervisor,
		Client:         client,
		History:        historyStore,
		Settings:       settingsStore,
		Voice:          recognizer,
		Logger:         log,
		StartupTimeout: cfg.Backend.StartupTimeoutDuration(),
		RequestTimeout: cfg.Backend.RequestTimeoutDuration(),
	}
	c.DoctorService = &doctor.Service{
		ConfigProvider: c.ConfigLoader,
		HistoryStore:   historyStore,
		SettingsStore:  settingsStore,
		Supervisor:     supervisor,
		Voice:          recognizer,
	}
	c.Config = cfg
	c.HistoryStore = historyStore
	c.SettingsStore = settingsStore
	c.Supervisor = supervisor
	c.Voice = recognizer
	c.Logger = log
	c.initialized = true
	return nil
}

// Close stops the backend process and releases stores. It is safe to call
// when the backend was never started or Init never ran.
func (c *Container) Close(ctx context.Context) error {
	if !c.initialized {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, domain.DefaultShutdownGrace+time.Second)
	defer cancel()

	err := c.Supervisor.Shutdown(ctx)
	if closer, ok := c.HistoryStore.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	_ = c.Logger.Sync()
	return err
}
