package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type DatabaseType `json:"type"`
	// DSN is a file path for SQLite and a connection string for PostgreSQL.
	DSN string `json:"dsn"`
}

// GetDatabaseConfig reads TODO_DB_TYPE and TODO_DB_DSN, defaulting to a
// SQLite file under the database folder.
func GetDatabaseConfig() DatabaseConfig {
	c := DatabaseConfig{
		Type: DatabaseType(os.Getenv("TODO_DB_TYPE")),
		DSN:  os.Getenv("TODO_DB_DSN"),
	}
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}
	if c.DSN == "" && c.Type == DatabaseTypeSQLite {
		c.DSN = GetDBPath()
	}
	return c
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.DSN == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypePostgreSQL:
		if c.DSN == "" {
			return fmt.Errorf("PostgreSQL connection string cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// IsPostgreSQL returns true if the database type is PostgreSQL
func (c *DatabaseConfig) IsPostgreSQL() bool {
	return c.Type == DatabaseTypePostgreSQL
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.DSN)
		return os.MkdirAll(dir, 0o750)
	}
	return nil
}
