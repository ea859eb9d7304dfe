package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/spelljack/cmd/spelljack/shared"
	"github.com/lox/spelljack/internal/catalog"
	"github.com/lox/spelljack/internal/config"
	"github.com/lox/spelljack/internal/session"
	"github.com/lox/spelljack/internal/session/redisstore"
	"github.com/lox/spelljack/internal/session/sqlite"
)

// app bundles what every command needs: configuration, logger, catalog and
// the profile store.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	catalog *catalog.Catalog
	store   session.Store
	profile string

	closers []io.Closer
}

// newApp loads configuration and opens the store. With toFile set the logger
// writes to the configured log file instead of stderr.
func newApp(ctx context.Context, g *Globals, toFile bool) (*app, error) {
	if err := session.ValidateProfile(g.Profile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}

	a := &app{cfg: cfg, profile: g.Profile}
	if toFile {
		logger, f, err := shared.SetupFileLogger(cfg.Log.File, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		a.logger = logger
		a.closers = append(a.closers, f)
	} else {
		logger, err := shared.SetupLogger(os.Stderr, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		a.logger = logger
	}

	a.catalog, err = catalog.Default()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	a.store, err = openStore(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append([]io.Closer{a.store}, a.closers...)

	a.logger.Debug("Opened profile store", "driver", cfg.Storage.Driver, "profile", a.profile)
	return a, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (session.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return session.NewMemoryStore(), nil
	case config.DriverFile:
		return session.NewFileStore(cfg.StoragePath())
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.StoragePath())
	case config.DriverRedis:
		return redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	}
	return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
}

// openSession loads the current profile.
func (a *app) openSession(ctx context.Context) (*session.State, error) {
	return session.Open(ctx, a.store, a.profile, a.catalog.ShopCards(), a.cfg.SessionOptions()...)
}

func (a *app) saveSession(ctx context.Context, s *session.State) error {
	return session.Save(ctx, a.store, a.profile, s)
}

// Close releases the store and log file.
func (a *app) Close() {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil && a.logger != nil {
		a.logger.Warn("Close failed", "error", err)
	}
}
