package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/hongminglow/carrot/internal/config"
	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/storage/gormstore"
)

// loadConfig reads .env, then the config file and environment, and configures logging.
func loadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found; relying on existing environment")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// openStore connects to the database and brings the schema up to date.
func openStore(ctx context.Context, cfg config.Config) (*gormstore.Store, error) {
	store, err := gormstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}
