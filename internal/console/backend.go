package console

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/data/db"
	"github.com/colonyops/tally/internal/data/dynamo"
	"github.com/colonyops/tally/internal/data/stores"
)

// OpenDatabase opens the local SQLite database. A corrupt database file is
// moved aside and a fresh one created.
func OpenDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, err
	}

	log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database is corrupt, moving it aside")
	if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
		return nil, fmt.Errorf("recover corrupt database: %w", rerr)
	}
	return db.Open(cfg.DataDir, opts)
}

// OpenStore returns the record backend selected by config. The SQLite
// backend shares database with the notification store.
func OpenStore(ctx context.Context, cfg *config.Config, database *db.DB) (entity.Store, error) {
	switch cfg.Backend.Kind {
	case config.BackendDynamoDB:
		d := cfg.Backend.DynamoDB
		store, err := dynamo.Connect(ctx, dynamo.Options{
			Table:    d.Table,
			Region:   d.Region,
			Profile:  d.Profile,
			Endpoint: d.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("connect dynamodb: %w", err)
		}
		return store, nil
	case config.BackendSQLite, "":
		return stores.NewRecordStore(database), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Kind)
	}
}
