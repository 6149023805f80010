package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/servak/fabric-manager/internal/repository"
	"github.com/servak/fabric-manager/internal/repository/neo4j"
)

type Config struct {
	Log            LogConfig              `yaml:"log"`
	Database       repository.Config      `yaml:"database"`
	Graph          *neo4j.Config          `yaml:"graph"`
	Output         OutputConfig           `yaml:"output"`
	Allocation     AllocationConfig       `yaml:"allocation"`
	DeviceFamilies map[string]PortCatalog `yaml:"deviceFamilies"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type OutputConfig struct {
	// Directory receives one subdirectory per pod with a .conf file per
	// device and the cabling DOT file
	Directory string `yaml:"directory"`
}

// AllocationConfig externalizes the allocation constants. The defaults
// reproduce the classic values: a /24-sized IRB subnet per leaf, irb.1 and
// lo0.0 unit names, /31 point-to-point interconnects.
type AllocationConfig struct {
	IrbHostsPerLeaf    int    `yaml:"irbHostsPerLeaf"`
	IrbUnit            string `yaml:"irbUnit"`
	LoopbackUnit       string `yaml:"loopbackUnit"`
	InterconnectLength int    `yaml:"interconnectLength"`
}

// PortCatalog lists the port names of one device family. Spines use the
// flat Ports list; leaves use UplinkPorts towards spines and DownlinkPorts
// towards servers.
type PortCatalog struct {
	Ports         []string `yaml:"ports"`
	UplinkPorts   []string `yaml:"uplinkPorts"`
	DownlinkPorts []string `yaml:"downlinkPorts"`
}

// envVarPattern matches ${VAR} and ${VAR:default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// expandEnv substitutes ${VAR} and ${VAR:default} references in raw config
func expandEnv(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		groups := envVarPattern.FindSubmatch(match)
		if value, ok := os.LookupEnv(string(groups[1])); ok {
			return []byte(value)
		}
		return groups[2]
	})
}

// Default returns the configuration used when no file is supplied
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Database: repository.Config{
			Type: "sqlite",
		},
		Output: OutputConfig{Directory: "out"},
		Allocation: AllocationConfig{
			IrbHostsPerLeaf:    254,
			IrbUnit:            "irb.1",
			LoopbackUnit:       "lo0.0",
			InterconnectLength: 31,
		},
	}
}

// LoadConfig reads, expands and validates a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(expandEnv(data), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyDefaults fills zero values left by partial config files
func (c *Config) applyDefaults() {
	defaults := Default()
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Output.Directory == "" {
		c.Output.Directory = defaults.Output.Directory
	}
	if c.Allocation.IrbHostsPerLeaf == 0 {
		c.Allocation.IrbHostsPerLeaf = defaults.Allocation.IrbHostsPerLeaf
	}
	if c.Allocation.IrbUnit == "" {
		c.Allocation.IrbUnit = defaults.Allocation.IrbUnit
	}
	if c.Allocation.LoopbackUnit == "" {
		c.Allocation.LoopbackUnit = defaults.Allocation.LoopbackUnit
	}
	if c.Allocation.InterconnectLength == 0 {
		c.Allocation.InterconnectLength = defaults.Allocation.InterconnectLength
	}
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Type == "" {
		return fmt.Errorf("database type is required")
	}
	if c.Allocation.InterconnectLength < 1 || c.Allocation.InterconnectLength > 31 {
		return fmt.Errorf("interconnect prefix length must be between 1 and 31, got %d",
			c.Allocation.InterconnectLength)
	}
	if c.Allocation.IrbHostsPerLeaf < 1 {
		return fmt.Errorf("irbHostsPerLeaf must be positive, got %d", c.Allocation.IrbHostsPerLeaf)
	}
	for family, catalog := range c.DeviceFamilies {
		if len(catalog.Ports) == 0 && len(catalog.UplinkPorts) == 0 && len(catalog.DownlinkPorts) == 0 {
			return fmt.Errorf("device family %s has no ports", family)
		}
	}
	return nil
}

// GetDefaultConfigPath returns the config file path, honoring the
// FABRIC_MANAGER_CONFIG environment variable
func GetDefaultConfigPath() string {
	if path := os.Getenv("FABRIC_MANAGER_CONFIG"); path != "" {
		return path
	}

	wd, _ := os.Getwd()
	return filepath.Join(wd, "config", "fabric-manager.yaml")
}
