// Package app wires configuration, logging, storage and the reading engine
// into one value shared by the command line and the viewers.
package app

import (
	"fmt"

	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/metcalfc/moonriver/internal/clock"
	"github.com/metcalfc/moonriver/internal/config"
	"github.com/metcalfc/moonriver/internal/debounce"
	"github.com/metcalfc/moonriver/internal/logging"
	"github.com/metcalfc/moonriver/internal/session"
	"github.com/metcalfc/moonriver/internal/storage"
	"go.uber.org/zap"
)

// App holds the long-lived pieces of a running reader.
type App struct {
	Config    config.Config
	Log       *zap.Logger
	Store     storage.Backend
	Catalog   *catalog.Catalog
	Settings  *session.SettingsStore
	Positions *session.PositionTracker

	sched  clock.Scheduler
	writer *debounce.Writer
}

// Open builds an App from cfg.
func Open(cfg config.Config) (*App, error) {
	log, err := logging.New(cfg.LogMode, cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := storage.Open(cfg.Backend, cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a, err := New(cfg, store, clock.Real(), log)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Debug("app opened",
		zap.String("backend", cfg.Backend),
		zap.String("state_dir", cfg.StateDir))
	return a, nil
}

// New builds an App over an already open store.
func New(cfg config.Config, store storage.Backend, sched clock.Scheduler, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cat, err := catalog.New(store, log)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	writer := debounce.NewWriter(sched, log)
	return &App{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Catalog:   cat,
		Settings:  session.NewSettingsStore(store, log),
		Positions: session.NewPositionTracker(store, writer, cfg.Debounce, log),
		sched:     sched,
		writer:    writer,
	}, nil
}

// NewController returns a navigation controller for one reading view.
func (a *App) NewController(router session.Router, viewport session.Viewport) *session.Controller {
	return session.NewController(a.Catalog, a.Positions, session.Options{
		Scheduler:     a.sched,
		Router:        router,
		Viewport:      viewport,
		RedirectDelay: a.Config.RedirectDelay,
		Logger:        a.Log,
	})
}

// Close commits pending position writes and releases the store.
func (a *App) Close() error {
	a.writer.Flush()
	a.writer.Stop()
	err := a.Store.Close()
	_ = a.Log.Sync()
	if err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
