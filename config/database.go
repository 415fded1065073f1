package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
	DatabaseTypeMySQL      DatabaseType = "mysql"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     DatabaseType `json:"type"`
	SQLite   SQLiteConfig `json:"sqlite"`
	Postgres DSNConfig    `json:"postgres"`
	MySQL    DSNConfig    `json:"mysql"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `json:"path"`
}

// DSNConfig holds a server database connection string.
type DSNConfig struct {
	DSN string `json:"dsn"`
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypePostgreSQL:
		return normalizePostgresURL(c.Postgres.DSN)
	case DatabaseTypeMySQL:
		return c.MySQL.DSN
	default:
		return c.SQLite.Path
	}
}

// normalizePostgresURL rewrites the legacy postgres:// scheme some hosting
// platforms still hand out.
func normalizePostgresURL(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(dsn, "postgres://")
	}
	return dsn
}

// GetDatabaseConfig builds the configuration from the environment.
// DATABASE_URL alone selects PostgreSQL, matching common PaaS conventions.
func GetDatabaseConfig() *DatabaseConfig {
	cfg := &DatabaseConfig{
		Type:     DatabaseTypeSQLite,
		SQLite:   SQLiteConfig{Path: GetDBPath()},
		Postgres: DSNConfig{DSN: os.Getenv("DATABASE_URL")},
		MySQL:    DSNConfig{DSN: os.Getenv("EDITAL_DB_DSN")},
	}
	switch DatabaseType(os.Getenv("EDITAL_DB_TYPE")) {
	case DatabaseTypePostgreSQL:
		cfg.Type = DatabaseTypePostgreSQL
		if dsn := os.Getenv("EDITAL_DB_DSN"); dsn != "" && cfg.Postgres.DSN == "" {
			cfg.Postgres.DSN = dsn
		}
	case DatabaseTypeMySQL:
		cfg.Type = DatabaseTypeMySQL
	case DatabaseTypeSQLite:
	default:
		if cfg.Postgres.DSN != "" {
			cfg.Type = DatabaseTypePostgreSQL
		}
	}
	return cfg
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypePostgreSQL:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("PostgreSQL requires DATABASE_URL or EDITAL_DB_DSN")
		}
	case DatabaseTypeMySQL:
		if c.MySQL.DSN == "" {
			return fmt.Errorf("MySQL requires EDITAL_DB_DSN")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.SQLite.Path)
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
