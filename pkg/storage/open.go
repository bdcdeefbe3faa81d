package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/noah-isme/maintenance-tracker-api/pkg/config"
)

// Open builds the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (DocumentBackend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFile, "":
		return NewLocalStorage(cfg.Store.DataDir)
	case config.StoreDriverMemory:
		return NewMemoryStorage(), nil
	case config.StoreDriverS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
	case config.StoreDriverPostgres:
		return NewPostgres(cfg.Database)
	case config.StoreDriverSQLite:
		return NewSQLite(cfg.SQLite.Path)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Close releases backends that hold connections.
func Close(backend DocumentBackend) error {
	if closer, ok := backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
