package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"moul.io/zapgorm2"

	"recipegram-backend/config"
)

const (
	maxIdleConns = 10
	maxOpenConns = 25
	maxIdleTime  = 5 * time.Minute
	maxLifetime  = time.Hour
)

// New opens the postgres connection. TranslateError is on so driver-level
// unique violations surface as gorm.ErrDuplicatedKey and the services can
// fold them into the conflict taxonomy.
func New(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	gormLogger := zapgorm2.New(logger)
	gormLogger.SetAsDefault()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxIdleTime(maxIdleTime)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	return db, nil
}
