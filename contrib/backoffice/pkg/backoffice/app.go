package backoffice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	fernanden "github.com/fernanden/fernanden.go"
	"github.com/fernanden/fernanden.go/pkg/logger"
	logslog "github.com/fernanden/fernanden.go/pkg/logger/slog"
)

// App holds the back-office state: one entity service per catalog entry
// on top of a single DB.
type App struct {
	db       *fernanden.DB
	catalog  *fernanden.Catalog
	entities map[string]*fernanden.Entity
	config   *Config
	log      logger.Logger
	closers  []io.Closer

	readOnly atomic.Bool
}

// New opens the configured backend and builds the entity services.
func New(ctx context.Context, cfg *Config) (*App, error) {
	log, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cc := cfg.Connection()
	cc.Logger = log
	db, err := fernanden.Open(ctx, cfg.Backend, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	log.Info("connected", "backend", cfg.Backend)

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app, err := NewWithDB(db, catalog, cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// NewWithDB builds an App around an existing DB.
func NewWithDB(db *fernanden.DB, catalog *fernanden.Catalog, cfg *Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop{}
	}
	if catalog == nil {
		catalog = fernanden.DefaultCatalog()
	}
	app := &App{
		db:       db,
		catalog:  catalog,
		entities: make(map[string]*fernanden.Entity, catalog.Len()),
		config:   cfg,
		log:      log,
	}
	for _, name := range catalog.Names() {
		e, err := db.Entity(catalog.MustGet(name))
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", name, err)
		}
		app.entities[name] = e
	}
	app.readOnly.Store(cfg.ReadOnly)
	return app, nil
}

func loadCatalog(path string) (*fernanden.Catalog, error) {
	if path == "" {
		return fernanden.DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return fernanden.LoadCatalog(f)
}

// newLogger builds the zerolog logger by default, or a slog JSON logger
// when log_format is "slog".
func newLogger(cfg *Config, stderr io.Writer) (logger.Logger, io.Closer, error) {
	if cfg.LogFormat == "slog" {
		level := new(slog.LevelVar)
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level.Set(slog.LevelInfo)
		}
		w, closer := stderr, io.Closer(nil)
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, nil, err
			}
			w, closer = f, f
		}
		return logslog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
	}

	build := logger.New().FromBuffer(stderr).WithLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		build = build.FromPath(cfg.LogFile)
	}
	l, err := build.Make()
	if err != nil {
		return nil, nil, err
	}
	return l, l, nil
}

// Entity returns the service for name.
func (a *App) Entity(name string) (*fernanden.Entity, bool) {
	e, ok := a.entities[name]
	return e, ok
}

func (a *App) Catalog() *fernanden.Catalog { return a.catalog }

func (a *App) DB() *fernanden.DB { return a.db }

// SetReadOnly switches maintenance mode. While read-only, every write
// endpoint answers 503 and reads keep working.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly.Store(readOnly)
	a.log.Warn("read-only mode changed", "read_only", readOnly)
}

func (a *App) IsReadOnly() bool {
	return a.readOnly.Load()
}

func (a *App) Close() error {
	err := a.db.Close()
	for _, c := range a.closers {
		_ = c.Close()
	}
	return err
}
