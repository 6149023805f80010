package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/servak/fabric-manager/internal/config"
	"github.com/servak/fabric-manager/internal/repository"
	"github.com/servak/fabric-manager/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  "Create or update the fabric schema in the configured store",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(cfg.Log.Level)

	repo, err := repository.NewRepository(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating repository: %w", err)
	}
	defer repo.Close()

	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	log.Info("migrations complete", "database", cfg.Database.Type)
	return nil
}
