// Package backend opens the storage implementation selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/config"
	"github.com/hongminglow/airfreight/internal/storage"
	"github.com/hongminglow/airfreight/internal/storage/postgres"
	"github.com/hongminglow/airfreight/internal/storage/sqlite"
)

// Open connects to the configured store and applies its schema.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
