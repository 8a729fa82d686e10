package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"terminalfleet/src/model"
)

// Connect opens the database, tunes the pool and runs migrations. The
// returned handle is constructed once at process start and passed down
// by dependency injection; there is no package-level DB.
func Connect() (*gorm.DB, error) {
	config := GetConfig()

	db, err := gorm.Open(postgres.Open(config.DatabaseURL),
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	logrus.Info("[database] connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.Info("[database] migrations completed")
	return db, nil
}

// Migrate runs AutoMigrate for every model in the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.BrokerConnection{},
		&model.TerminalInstance{},
		&model.TerminalCommand{},
		&model.Trade{},
		&model.CandleSnapshot{},
		&model.PositionSnapshot{},
		&model.SyncLog{},
		&model.RateLimitRecord{},
		&model.AuditLogEntry{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
