package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"collab-board/internal/domain"
)

// modelInfo holds information about a domain model and its table name
type modelInfo struct {
	model     interface{}
	tableName string
}

func models() []modelInfo {
	return []modelInfo{
		{&domain.User{}, "users"},
		{&domain.Board{}, "boards"},
		{&domain.Label{}, "board_labels"},
	}
}

// AutoMigrate creates or updates the tables of every persisted model
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models() {
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}
	}
	return nil
}

// AutoMigrateWithRetry runs AutoMigrate up to maxRetries times with linear
// backoff, logging whether each table already existed.
func AutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		for _, m := range models() {
			logger.Debug("Migrating table",
				zap.String("table", m.tableName),
				zap.Bool("exists", db.Migrator().HasTable(m.model)))
		}

		if err = AutoMigrate(db); err == nil {
			logger.Info("Database migrations completed", zap.Int("attempt", attempt))
			return nil
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
