package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/servak/fabric-manager/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetDefaultConfigPath()
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		fmt.Printf("Configuration is valid: %s\n", path)
		fmt.Printf("Database type: %s\n", cfg.Database.Type)
		fmt.Printf("Device families: %d configured\n", len(cfg.DeviceFamilies))
		fmt.Printf("Output directory: %s\n", cfg.Output.Directory)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Show current configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetDefaultConfigPath()
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Mask sensitive information
		if cfg.Database.Postgres.Password != "" {
			cfg.Database.Postgres.Password = "***"
		}
		if cfg.Graph != nil && cfg.Graph.Password != "" {
			cfg.Graph.Password = "***"
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to serialize configuration: %w", err)
		}

		fmt.Printf("Configuration from: %s\n\n", path)
		fmt.Print(string(data))
		return nil
	},
}

var configExampleCmd = &cobra.Command{
	Use:   "example [output-file]",
	Short: "Generate example configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath := "fabric-manager.example.yaml"
		if len(args) > 0 {
			outputPath = args[0]
		}

		exampleConfig := `# Fabric Manager Configuration

log:
  level: info

database:
  # Database type: sqlite or postgres
  type: sqlite
  sqlite:
    path: fabric.db
  # Environment variables are supported: ${VAR} or ${VAR:default}
  postgres:
    host: ${DB_HOST:localhost}
    port: 5432
    user: ${DB_USER:fabric}
    password: ${DB_PASSWORD:fabric_password}
    dbname: ${DB_NAME:fabric_manager}
    sslmode: ${DB_SSLMODE:disable}

# Optional Neo4j mirror for cabling graph queries (generate --graph)
# graph:
#   uri: ${NEO4J_URI:bolt://localhost:7687}
#   username: ${NEO4J_USERNAME:neo4j}
#   password: ${NEO4J_PASSWORD:neo4j_password}
#   database: ${NEO4J_DATABASE:neo4j}

output:
  # One subdirectory per pod with a .conf file per device
  directory: out

allocation:
  irbHostsPerLeaf: 254
  irbUnit: irb.1
  loopbackUnit: lo0.0
  interconnectLength: 31

# Port catalog per device family. Spines use the flat ports list; leaves
# use uplinkPorts towards spines and downlinkPorts towards servers.
deviceFamilies:
  qfx5100-24q:
    ports:
      - et-0/0/0
      - et-0/0/1
      - et-0/0/2
      - et-0/0/3
  qfx5100-48s:
    uplinkPorts:
      - et-0/0/48
      - et-0/0/49
      - et-0/0/50
      - et-0/0/51
    downlinkPorts:
      - xe-0/0/0
      - xe-0/0/1
      - xe-0/0/2
      - xe-0/0/3
`

		if err := os.WriteFile(outputPath, []byte(exampleConfig), 0o644); err != nil {
			return fmt.Errorf("failed to write example config: %w", err)
		}

		fmt.Printf("Example configuration written to: %s\n", outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configExampleCmd)
}
