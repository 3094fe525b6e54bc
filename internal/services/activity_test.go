package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"control_center_echo/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// every connection to file::memory: is a separate database
	db, err := OpenDB(sqlite.Open("file::memory:"), Pool{MaxIdle: 1, MaxOpen: 1}, false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func TestNewActivityLogWithoutDatabase(t *testing.T) {
	log := NewActivityLog(nil)
	assert.IsType(t, NopActivityLog{}, log)

	require.NoError(t, log.Record(context.Background(), models.ActivityEvent{Kind: models.ActivityKindSignin}))
	events, err := log.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDBActivityLog(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	activity := NewActivityLog(db)

	base := time.Now().Add(-time.Hour)
	for i, kind := range []models.ActivityKind{models.ActivityKindSignin, models.ActivityKindSigninFailed, models.ActivityKindSignout} {
		require.NoError(t, activity.Record(ctx, models.ActivityEvent{
			Kind:      kind,
			Subject:   "user-1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := activity.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.ActivityKindSignout, events[0].Kind)
	assert.Equal(t, models.ActivityKindSigninFailed, events[1].Kind)
}

func TestDBActivityLogRecordChat(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	activity := NewActivityLog(db)

	require.NoError(t, activity.RecordChat(ctx, models.ChatExchange{
		Subject: "user-1",
		Message: "Where is the clash?",
		Reply:   "Level 3, grid C4.",
	}))

	var exchanges []models.ChatExchange
	require.NoError(t, db.Find(&exchanges).Error)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "Level 3, grid C4.", exchanges[0].Reply)

	events, err := activity.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ActivityKindChat, events[0].Kind)
	assert.Equal(t, "Where is the clash?", events[0].Message)
}
