// Package database opens the gorm connection used by every store of the server.
package database

import (
	"errors"
	"fmt"

	"github.com/sessiontodo/todo/config"
	"github.com/sessiontodo/todo/database/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func initModels(db *gorm.DB) error {
	models := []any{
		&model.User{},
		&model.Task{},
		&model.AccessRecord{},
		&model.Session{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto migrating %T: %w", m, err)
		}
	}
	return nil
}

// InitDB opens the configured database and migrates the schema.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.IsPostgreSQL() {
		db, err = openPostgres(cfg.DSN, c)
	} else {
		db, err = openSQLite(cfg, c)
	}
	if err != nil {
		return nil, err
	}

	if err := initModels(db); err != nil {
		return nil, err
	}
	return db, nil
}

func openSQLite(cfg config.DatabaseConfig, c *gorm.Config) (*gorm.DB, error) {
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return nil, err
	}

	// Immediate transactions avoid lock upgrades failing under concurrent writers.
	dsn := cfg.DSN + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA cache_size = -64000;",
		"PRAGMA temp_store = MEMORY;",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func openPostgres(dsn string, c *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// CloseDB checkpoints the SQLite WAL when applicable and closes the pool.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA wal_checkpoint;").Error; err != nil {
			return err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
