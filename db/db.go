package db

import (
	"os"
	"path/filepath"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Db is the open history database; Path is where it lives.
var (
	Db   *gorm.DB
	Path = filepath.Join(os.Getenv("HOME"), ".nodecli", "history.db")
)

// InitDB opens the lookup history database and creates its tables.
func InitDB() error {
	if err := createDBDirectory(); err != nil {
		return err
	}

	if err := openDatabase(); err != nil {
		return err
	}

	if err := migrateTables(); err != nil {
		return err
	}

	configureLogger()

	log.Info().Str("path", Path).Msg("Database initialized successfully")
	return nil
}

func createDBDirectory() error {
	if err := os.MkdirAll(filepath.Dir(Path), 0o750); err != nil {
		log.Error().Err(err).Msg("Failed to create database directory")
		return apperr.IO(err)
	}
	return nil
}

// openDatabase sets Db only when the connection opens.
func openDatabase() error {
	conn, err := gorm.Open(sqlite.Open(Path), &gorm.Config{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return apperr.Database(err)
	}
	Db = conn
	return nil
}

// migrateTables closes and clears Db when the schema cannot be created.
func migrateTables() error {
	if err := Db.AutoMigrate(&Lookup{}); err != nil {
		log.Error().Err(err).Msg("Failed to auto-migrate database")
		if sqlDB, dbErr := Db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		Db = nil
		return apperr.Database(err)
	}
	return nil
}

// configureLogger keeps GORM silent unless debug logging is enabled.
func configureLogger() {
	if zerolog.GlobalLevel() == zerolog.Disabled {
		Db.Logger = Db.Logger.LogMode(logger.Silent)
	} else {
		Db.Logger = Db.Logger.LogMode(logger.Info)
	}
}

// CloseDB closes the database connection. Closing an unopened database is a no-op.
func CloseDB() error {
	if Db == nil {
		return nil
	}
	sqlDB, err := Db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get raw database connection")
		return apperr.Database(err)
	}
	if err := sqlDB.Close(); err != nil {
		return apperr.Database(err)
	}
	Db = nil
	return nil
}
