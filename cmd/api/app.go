package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/config"
	"github.com/Tomlord1122/taskhub/internal/database"
	"github.com/Tomlord1122/taskhub/internal/logging"
)

// app holds what every subcommand needs: configuration, a logger and an
// open, migrated database.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     database.Service
}

func bootstrap(ctx context.Context, configPath string, migrate bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.Database, logging.GormLogger(logger, logger.Level()), logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			_ = logger.Sync()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("closing database connection pool", zap.Error(err))
	}
	_ = a.logger.Sync()
}
