package dao

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, InitTables(db))
	return db
}

func seedEvent(t *testing.T, db *gorm.DB) Event {
	t.Helper()

	event := Event{
		Name:      "Festival",
		StartDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
		Status:    "active",
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func ptr[T any](v T) *T {
	return &v
}
