package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// postgresRepository implements the fabric repository interface
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(config Config) (*postgresRepository, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("postgres", config.BuildDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	return &postgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *postgresRepository) Close() error {
	return r.db.Close()
}

// Health checks database connectivity
func (r *postgresRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Migrate runs database migrations
func (r *postgresRepository) Migrate() error {
	return RunMigrations(r.db)
}

// Clear clears the database
func (r *postgresRepository) Clear() error {
	for _, table := range []string{"logical_interfaces", "physical_interfaces", "devices", "pods"} {
		if _, err := r.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
