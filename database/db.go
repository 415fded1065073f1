// Package database opens the gorm connection, migrates the models and
// seeds the default administrator.
package database

import (
	"errors"
	"log"

	"github.com/editalgen/editalgen/config"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/util/crypto"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@example.com"
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.Edital{},
		&model.Setting{},
		&model.AuditLog{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// EnsureDefaultAdmin creates the admin account when no user named admin
// exists. It reports whether a user was created.
func EnsureDefaultAdmin() (bool, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", DefaultAdminUsername).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hash, err := crypto.HashPasswordAsBcrypt(DefaultAdminPassword)
	if err != nil {
		return false, err
	}
	admin := &model.User{
		Username: DefaultAdminUsername,
		Email:    DefaultAdminEmail,
		Password: hash,
		Role:     model.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

func initUser() error {
	empty, err := isTableEmpty(&model.User{})
	if err != nil {
		log.Printf("Error checking if users table is empty: %v", err)
		return err
	}
	if empty {
		_, err = EnsureDefaultAdmin()
		return err
	}
	return nil
}

func isTableEmpty(m any) (bool, error) {
	var count int64
	err := db.Model(m).Count(&count).Error
	return count == 0, err
}

func gormConfig() *gorm.Config {
	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}
	return &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
}

// InitDB opens the SQLite database at dbPath.
func InitDB(dbPath string) error {
	return InitDBWithConfig(&config.DatabaseConfig{
		Type:   config.DatabaseTypeSQLite,
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
}

// InitDBWithConfig selects the gorm driver matching cfg.Type.
func InitDBWithConfig(cfg *config.DatabaseConfig) error {
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return err
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case config.DatabaseTypePostgreSQL:
		dialector = postgres.Open(cfg.GetDSN())
	case config.DatabaseTypeMySQL:
		dialector = mysql.Open(cfg.GetDSN())
	default:
		dialector = sqlite.Open(cfg.GetDSN() + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL")
	}
	return InitDBWithDialector(dialector)
}

// InitDBWithDialector opens db with an arbitrary dialector, migrates the
// schema and seeds the admin user. Tests use it with an in-process driver.
func InitDBWithDialector(dialector gorm.Dialector) error {
	var err error
	db, err = gorm.Open(dialector, gormConfig())
	if err != nil {
		return err
	}

	if isSQLite() {
		for _, pragma := range []string{
			"PRAGMA cache_size = -64000;",
			"PRAGMA temp_store = MEMORY;",
			"PRAGMA foreign_keys = ON;",
		} {
			if err := db.Exec(pragma).Error; err != nil {
				return err
			}
		}
	}

	if err := initModels(); err != nil {
		return err
	}
	return initUser()
}

func isSQLite() bool {
	return db != nil && db.Dialector.Name() == "sqlite"
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	if err := Checkpoint(); err != nil {
		log.Printf("error executing checkpoint: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	db = nil
	return err
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Checkpoint flushes the SQLite WAL. It is a no-op for server databases.
func Checkpoint() error {
	if !isSQLite() {
		return nil
	}
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
