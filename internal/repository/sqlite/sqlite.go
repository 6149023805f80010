package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// sqliteRepository implements the fabric repository interface
type sqliteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(config Config) (*sqliteRepository, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("sqlite3", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// Foreign keys drive the pod -> device -> interface delete cascade
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrency (except for :memory:)
	if config.Path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &sqliteRepository{db: db}, nil
}

// Close closes the database connection
func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

// Health checks database connectivity
func (r *sqliteRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Migrate runs database migrations
func (r *sqliteRepository) Migrate() error {
	return RunMigrations(r.db)
}

// Clear clears the database
func (r *sqliteRepository) Clear() error {
	for _, table := range []string{"logical_interfaces", "physical_interfaces", "devices", "pods"} {
		if _, err := r.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
