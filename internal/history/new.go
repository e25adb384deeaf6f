package history

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/edusummarize/internal/config"
)

// New opens the store selected by cfg.History.Driver.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.History.Driver {
	case config.DriverSQLite, "":
		path := cfg.History.DSN
		if path == "" {
			path = filepath.Join(cfg.Paths.Data, "history.db")
		}
		return OpenSQLite(ctx, path)
	case config.DriverPostgres:
		return OpenPostgres(ctx, postgresConfig(cfg.History))
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.History.DSN, cfg.History.Database)
	default:
		return nil, fmt.Errorf("unsupported history driver %q", cfg.History.Driver)
	}
}

func postgresConfig(cfg config.HistoryConfig) PostgresConfig {
	return PostgresConfig{
		DSN:          cfg.DSN,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		ConnMaxLife:  time.Duration(cfg.ConnMaxLifetimeSeconds) * time.Second,
	}
}
