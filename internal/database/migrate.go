package database

import (
	"gorm.io/gorm"

	"recipegram-backend/internal/models"
)

// Migrate applies the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
