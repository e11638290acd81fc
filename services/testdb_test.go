package services

import (
	"testing"

	"social-events-system/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access connection pool: %v", err)
	}
	// One connection only: every :memory: connection is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.PhoneAuth{},
		&models.Event{},
		&models.Address{},
		&models.Location{},
		&models.UserEventLink{},
		&models.Friendship{},
		&models.Message{},
		&models.RankingParameters{},
		&models.RankingInfo{},
		&models.Score{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}
