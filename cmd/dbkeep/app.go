package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/config"
	"github.com/sagarc03/dbkeep/database"
	"github.com/sagarc03/dbkeep/migrations"
	"github.com/sagarc03/dbkeep/schema"
)

// app bundles what every command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	schema   schema.Schema
	registry *prometheus.Registry
	metrics  *database.Metrics
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	s := schema.Default()
	if cfg.Schema.File != "" {
		s, err = schema.Load(cfg.Schema.File)
		if err != nil {
			return nil, fmt.Errorf("load schema: %w", err)
		}
	}

	registry := prometheus.NewRegistry()

	return &app{
		cfg:      cfg,
		schema:   s,
		registry: registry,
		metrics:  database.NewMetrics(registry),
	}, nil
}

// connect waits for the configured database and returns the probe result.
// The caller owns result.Conn.
func (a *app) connect(ctx context.Context) (dbkeep.CheckResult, error) {
	opts := append(a.cfg.SupervisorOptions(), database.WithMetrics(a.metrics))
	return database.ConnectWithRetry(ctx, a.cfg.Database, opts...)
}

func (a *app) migrator() (*database.Migrator, error) {
	return database.NewMigrator(migrations.All(a.schema), database.WithMetrics(a.metrics))
}

func (a *app) catalog() (dbkeep.Catalog, error) {
	return a.schema.Catalog()
}

func (a *app) resetOptions() []database.Option {
	return []database.Option{database.WithMetrics(a.metrics)}
}

// flushMetrics writes the collected metrics when a textfile is configured.
// Failures are logged; they never fail the command.
func (a *app) flushMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}

	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		slog.Warn("failed to write metrics textfile", "path", path, "err", err)
	}
}
