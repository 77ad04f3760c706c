package repositories

import (
	"testing"

	"github.com/clearforum/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the production schema.
// A single connection keeps concurrent test writers from tripping over
// SQLite's locking.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Subscription{},
		&models.Notification{},
	))
	return db
}

func topicRef(id uint) models.TargetRef {
	return models.TargetRef{Kind: models.EntityTopic, ID: id}
}
