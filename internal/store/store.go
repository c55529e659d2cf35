package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datallboy/rangefetch/internal/infra/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type PersistentStore struct {
	db      *sql.DB
	dialect string
}

// NewPersistentStore opens the history database described by cfg and
// brings its schema up to date.
func NewPersistentStore(cfg config.StoreConfig) (*PersistentStore, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case "sqlite", "":
		db, err = openSQLite(cfg.SQLitePath)
	case "postgres":
		db, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			err = fmt.Errorf("failed to open postgres: %w", err)
		}
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	// Ping makes sure the database is actually reachable and the DSN is valid
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	dialect := cfg.Driver
	if dialect == "" {
		dialect = "sqlite"
	}
	store := &PersistentStore{db: db, dialect: dialect}

	if err := store.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}

	return store, nil
}

func openSQLite(dbPath string) (*sql.DB, error) {
	// Ensure the database directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

func (s *PersistentStore) Close() error {
	return s.db.Close()
}
