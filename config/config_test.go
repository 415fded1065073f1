package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDatabaseConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantType DatabaseType
		wantDSN  string
	}{
		{
			name:     "defaults to sqlite",
			env:      map[string]string{"EDITAL_DB_FOLDER": "/tmp/x"},
			wantType: DatabaseTypeSQLite,
			wantDSN:  "/tmp/x/edital.db",
		},
		{
			name:     "database url selects postgres",
			env:      map[string]string{"DATABASE_URL": "postgres://u:p@h/db"},
			wantType: DatabaseTypePostgreSQL,
			wantDSN:  "postgresql://u:p@h/db",
		},
		{
			name:     "explicit mysql",
			env:      map[string]string{"EDITAL_DB_TYPE": "mysql", "EDITAL_DB_DSN": "u:p@tcp(h)/db"},
			wantType: DatabaseTypeMySQL,
			wantDSN:  "u:p@tcp(h)/db",
		},
		{
			name:     "explicit sqlite ignores database url",
			env:      map[string]string{"EDITAL_DB_TYPE": "sqlite", "DATABASE_URL": "postgres://x", "EDITAL_DB_FOLDER": "d"},
			wantType: DatabaseTypeSQLite,
			wantDSN:  "d/edital.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DATABASE_URL", "EDITAL_DB_TYPE", "EDITAL_DB_DSN", "EDITAL_DB_FOLDER"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := GetDatabaseConfig()
			assert.Equal(t, tt.wantType, cfg.Type)
			assert.Equal(t, tt.wantDSN, cfg.GetDSN())
			assert.NoError(t, cfg.ValidateConfig())
		})
	}
}

func TestValidateConfigRejectsMissingDSN(t *testing.T) {
	cfg := &DatabaseConfig{Type: DatabaseTypeMySQL}
	assert.Error(t, cfg.ValidateConfig())

	cfg = &DatabaseConfig{Type: "oracle"}
	assert.Error(t, cfg.ValidateConfig())
}

func TestStorageConfig(t *testing.T) {
	t.Setenv("EDITAL_STORAGE", "s3")
	t.Setenv("EDITAL_S3_BUCKET", "")
	cfg := GetStorageConfig()
	assert.Equal(t, StorageS3, cfg.Type)
	assert.Error(t, cfg.Validate())

	t.Setenv("EDITAL_STORAGE", "")
	t.Setenv("EDITAL_DATA_FOLDER", t.TempDir())
	cfg = GetStorageConfig()
	assert.Equal(t, StorageLocal, cfg.Type)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.EnsureDataFolder())
}

func TestGetPortOverride(t *testing.T) {
	t.Setenv("PORT", "10000")
	assert.Equal(t, 10000, GetPortOverride())
	t.Setenv("PORT", "")
	assert.Equal(t, 0, GetPortOverride())
}
