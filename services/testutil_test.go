package services

import (
	"testing"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package's global DB at a fresh in-memory sqlite
// database. One connection only, so every query sees the same memory.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.PricingRule{},
		&models.AvailabilityRecord{},
		&models.BlockedPeriod{},
		&models.Reservation{},
		&models.SyncLogEntry{},
	); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	storage.DB = db
}

func createTestRoom(t *testing.T, room models.Room) models.Room {
	t.Helper()
	if room.Slug == "" {
		room.Slug = "rose-room"
	}
	if room.Name == "" {
		room.Name = "Rose Room"
	}
	if room.Status == "" {
		room.Status = models.RoomStatusActive
	}
	if err := storage.DB.Create(&room).Error; err != nil {
		t.Fatalf("creating test room: %v", err)
	}
	return room
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
