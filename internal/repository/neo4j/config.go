package neo4j

import "fmt"

// Config holds Neo4j database configuration
type Config struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("neo4j URI is required")
	}
	if c.Username == "" {
		return fmt.Errorf("neo4j username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("neo4j password is required")
	}
	return nil
}
