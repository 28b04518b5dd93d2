package main

import (
	"flag"
	"fmt"

	"zayana-be/internal/config"
	"zayana-be/internal/db"
	"zayana-be/internal/logger"

	"go.uber.org/zap"
)

// migrator is the part of db.Migrator the command drives.
type migrator interface {
	Up() error
	Down() error
	Close() error
}

var newMigrator = func(cfg *config.Config) (migrator, error) {
	conn, err := db.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	m, err := db.NewMigrator(conn, logger.L())
	if err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("environment variables not loaded properly", zap.Error(err))
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()

	if err := run(cfg, *mode); err != nil {
		logger.L().Fatal("migration failed", zap.String("mode", *mode), zap.Error(err))
	}
}

func run(cfg *config.Config, mode string) error {
	if mode != "up" && mode != "down" {
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.L().Warn("failed to close migrator", zap.Error(err))
		}
	}()

	if mode == "down" {
		return m.Down()
	}
	return m.Up()
}
