package database

import (
	"clipstream_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate прогоняет AutoMigrate для всех моделей приложения
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Video{},
		&models.WatchHistoryEntry{},
	)
}
