package database

import (
	"testing"

	"agora/internal/config"
	modelspkg "agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	err = configurePool(db, cfg)
	assert.NoError(t, err)

	_, err = db.DB()
	assert.NoError(t, err)
}

func TestMigrate_CreatesModerationIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	// The partial unique index must reject a second active ban for the
	// same user while allowing any number of inactive rows.
	ban := modelspkg.ChatBan{UserID: 1, BannedByUserID: 2, Reason: "spam", IsActive: true}
	require.NoError(t, db.Create(&ban).Error)

	dup := modelspkg.ChatBan{UserID: 1, BannedByUserID: 2, Reason: "again", IsActive: true}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, modelspkg.IsUniqueViolation(err))

	inactive := modelspkg.ChatBan{UserID: 1, BannedByUserID: 2, Reason: "old", IsActive: false}
	assert.NoError(t, db.Create(&inactive).Error)
}

func TestPersistentModels_IncludesModerationModels(t *testing.T) {
	foundBan := false
	foundFlag := false
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.ChatBan:
			foundBan = true
		case *modelspkg.FlaggedPost:
			foundFlag = true
		}
	}
	require.True(t, foundBan, "PersistentModels should include ChatBan")
	require.True(t, foundFlag, "PersistentModels should include FlaggedPost")
}
