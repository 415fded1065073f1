// Package config exposes the application name, version and the
// environment-driven settings read at startup.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// StorageType selects where generated documents are kept.
type StorageType string

const (
	StorageLocal StorageType = "local"
	StorageS3    StorageType = "s3"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("EDITAL_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("EDITAL_DEBUG") == "true"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetDBFolderPath() string {
	return getEnv("EDITAL_DB_FOLDER", "db")
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	return getEnv("EDITAL_LOG_FOLDER", "logs")
}

// GetDataFolder is the directory holding generated documents when the
// local store is used.
func GetDataFolder() string {
	return getEnv("EDITAL_DATA_FOLDER", "generated_editals")
}

func GetClausesFile() string {
	return getEnv("EDITAL_CLAUSES_FILE", "clausulas.json")
}

func GetTemplateFile() string {
	return getEnv("EDITAL_TEMPLATE_FILE", "modelo_edital_template.docx")
}

// GetPortOverride returns the PORT variable set by hosting platforms, or 0.
func GetPortOverride() int {
	var port int
	if _, err := fmt.Sscanf(os.Getenv("PORT"), "%d", &port); err != nil {
		return 0
	}
	return port
}

func GetJWTSecret() string {
	return os.Getenv("EDITAL_JWT_SECRET")
}

// StorageConfig holds the document store configuration.
type StorageConfig struct {
	Type       StorageType
	LocalDir   string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Access   string
	S3Secret   string
	S3Prefix   string
}

func GetStorageConfig() *StorageConfig {
	return &StorageConfig{
		Type:       StorageType(getEnv("EDITAL_STORAGE", string(StorageLocal))),
		LocalDir:   GetDataFolder(),
		S3Bucket:   os.Getenv("EDITAL_S3_BUCKET"),
		S3Region:   getEnv("EDITAL_S3_REGION", "us-east-1"),
		S3Endpoint: os.Getenv("EDITAL_S3_ENDPOINT"),
		S3Access:   os.Getenv("EDITAL_S3_ACCESS_KEY"),
		S3Secret:   os.Getenv("EDITAL_S3_SECRET_KEY"),
		S3Prefix:   getEnv("EDITAL_S3_PREFIX", "editais/"),
	}
}

func (c *StorageConfig) Validate() error {
	switch c.Type {
	case StorageLocal:
		if c.LocalDir == "" {
			return fmt.Errorf("local storage directory cannot be empty")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Type)
	}
	return nil
}

// EnsureDataFolder creates the local document directory.
func (c *StorageConfig) EnsureDataFolder() error {
	if c.Type != StorageLocal {
		return nil
	}
	return os.MkdirAll(filepath.Clean(c.LocalDir), 0o755)
}
