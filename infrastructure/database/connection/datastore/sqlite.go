package datastore

import (
	"facegate.io/entities"
	"facegate.io/infrastructure/env"
	"facegate.io/infrastructure/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// SQLiteDB is the on-device datastore handle, nil until ConnectSQLite runs.
var SQLiteDB *gorm.DB

// ConnectSQLite opens (creating if needed) the device database and migrates
// the enrollment and audit tables.
func ConnectSQLite() {
	path := env.Get("FACEGATE_SQLITE_PATH", "facegate.db")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		logger.Error("could not open sqlite database", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "path",
			Data: path,
		})
		return
	}

	if err := db.AutoMigrate(&entities.EnrolledEmbedding{}, &entities.VerificationAttempt{}); err != nil {
		logger.Error("sqlite migration failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}

	SQLiteDB = db
	logger.Info("connected to sqlite successfully", logger.LoggerOptions{
		Key:  "path",
		Data: path,
	})
}

func CleanUpSQLite() {
	if SQLiteDB == nil {
		return
	}
	if sqlDB, err := SQLiteDB.DB(); err == nil {
		sqlDB.Close()
	}
}
