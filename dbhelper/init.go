package dbhelper

import (
	"fmt"
	"time"

	"wardrobeapi/models"
	"wardrobeapi/services"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDB connects to postgres and migrates the key-value table.
func SetupDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(
		fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			services.GetEnv("DB_USERNAME", ""),
			services.GetEnv("DB_PASSWORD", ""),
			services.GetEnv("DB_HOST", ""),
			services.GetEnv("DB_PORT", "5432"),
			services.GetEnv("DB_NAME", ""),
		),
	), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)

	if err := Migrate(db, &models.KVEntry{}); err != nil {
		return nil, err
	}
	return db, nil
}

// SetupTestDB connects with the local test credentials unless the
// environment already points somewhere else.
func SetupTestDB() *gorm.DB {
	setDefaultEnv("DB_USERNAME", "wardrobe")
	setDefaultEnv("DB_PASSWORD", "wardrobe")
	setDefaultEnv("DB_HOST", "localhost")
	setDefaultEnv("DB_NAME", "wardrobe")
	setDefaultEnv("DB_PORT", "5432")
	db, err := SetupDB()
	if err != nil {
		panic(err)
	}
	return db
}
