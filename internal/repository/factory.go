package repository

import (
	"fmt"

	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/internal/repository/postgres"
	"github.com/servak/fabric-manager/internal/repository/sqlite"
)

// Config represents database configuration
type Config struct {
	Type     string          `yaml:"type"` // "postgres" or "sqlite"
	Postgres postgres.Config `yaml:"postgres"`
	SQLite   sqlite.Config   `yaml:"sqlite"`
}

// NewRepository creates a new repository based on configuration
func NewRepository(config Config) (fabric.Repository, error) {
	switch config.Type {
	case "postgres":
		if err := config.Postgres.Validate(); err != nil {
			return nil, fmt.Errorf("invalid postgres config: %w", err)
		}
		return postgres.NewPostgresRepository(config.Postgres)
	case "sqlite":
		if err := config.SQLite.Validate(); err != nil {
			return nil, fmt.Errorf("invalid sqlite config: %w", err)
		}
		return sqlite.NewSQLiteRepository(config.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// NewTestRepository creates an in-memory SQLite repository for testing
func NewTestRepository() (fabric.Repository, error) {
	config := sqlite.Config{
		Path: ":memory:",
	}
	repo, err := sqlite.NewSQLiteRepository(config)
	if err != nil {
		return nil, err
	}

	if err := repo.Migrate(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return repo, nil
}
