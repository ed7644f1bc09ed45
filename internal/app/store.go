package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/bolt"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

func openStore(cfg config.Config, logger *logging.Logger) (docstore.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := openPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("document store ready", "driver", cfg.StoreDriver, "db_name", dbNameFromURL(cfg.DBURL))
		return postgres.NewDocumentStore(db), db.Close, nil
	case config.StoreBolt:
		if dir := filepath.Dir(cfg.BoltPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create bolt dir: %w", err)
			}
		}
		store, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store: %w", err)
		}
		logger.Info("document store ready", "driver", cfg.StoreDriver, "path", cfg.BoltPath)
		return store, store.Close, nil
	default:
		logger.Warn("document store is in memory; data is lost on restart")
		return memory.NewDocumentStore(), func() error { return nil }, nil
	}
}

func openPostgres(cfg config.Config) (*sqlx.DB, error) {
	dsn := config.NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
