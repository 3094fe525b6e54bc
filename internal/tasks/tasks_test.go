package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"control_center_echo/internal/models"
	"control_center_echo/internal/services"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// every connection to file::memory: is a separate database
	db, err := services.OpenDB(sqlite.Open("file::memory:"), services.Pool{MaxIdle: 1, MaxOpen: 1}, false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, services.AutoMigrate(db))
	return db
}

func newTestRunner(db *gorm.DB, registry *Registry) *Runner {
	r := NewRunner(db, registry)
	r.now = func() time.Time { return testNow }
	return r
}

func TestDefineTasks(t *testing.T) {
	r := NewRegistry()
	DefineTasks(r)

	assert.Equal(t, []string{"log_info", "purge_activity", "purge_chat_exchanges"}, r.Names())

	_, ok := r.Get("send_notification")
	assert.False(t, ok)
}

func TestBuildScheduledTask(t *testing.T) {
	task, err := BuildScheduledTask("purge_activity", PurgeArgs{RetentionDays: 7}, testNow, nil, models.ScheduledTaskTypeOneTime, 0)
	require.NoError(t, err)

	assert.Equal(t, "purge_activity", task.TaskName)
	assert.Equal(t, map[string]interface{}{"retention_days": float64(7)}, task.Arguments)
	assert.Equal(t, models.ScheduledTaskStatusActive, task.Status)
	assert.Equal(t, 1, task.MaxAttempt)
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    int
		wantErr bool
	}{
		{name: "missing uses default", args: map[string]interface{}{}, want: 30},
		{name: "json number", args: map[string]interface{}{"retention_days": float64(7)}, want: 7},
		{name: "int", args: map[string]interface{}{"retention_days": 12}, want: 12},
		{name: "string", args: map[string]interface{}{"retention_days": "14"}, want: 14},
		{name: "fraction", args: map[string]interface{}{"retention_days": 1.5}, wantErr: true},
		{name: "garbage", args: map[string]interface{}{"retention_days": "soon"}, wantErr: true},
		{name: "wrong type", args: map[string]interface{}{"retention_days": true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intArg(tt.args, "retention_days", 30)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPurgeCutoff(t *testing.T) {
	task := &purgeTask{id: "purge_activity", model: &models.ActivityEvent{}, now: func() time.Time { return testNow }}

	cutoff, days, err := task.Cutoff(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRetentionDays, days)
	assert.True(t, cutoff.Equal(testNow.AddDate(0, 0, -30)))

	_, _, err = task.Cutoff(map[string]interface{}{"retention_days": float64(0)})
	assert.Error(t, err)
}

func TestPurgeActivity(t *testing.T) {
	db := openTestDB(t)
	task := &purgeTask{id: "purge_activity", model: &models.ActivityEvent{}, now: func() time.Time { return testNow }}

	old := models.ActivityEvent{Kind: models.ActivityKindSignin, CreatedAt: testNow.AddDate(0, 0, -10)}
	recent := models.ActivityEvent{Kind: models.ActivityKindChat, CreatedAt: testNow.AddDate(0, 0, -2)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	result, err := task.HandleExecution(context.Background(), db, map[string]interface{}{"retention_days": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result["deleted"])

	var remaining []models.ActivityEvent
	require.NoError(t, db.Unscoped().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}

func TestCompletionUpdates(t *testing.T) {
	rule := "FREQ=DAILY"
	due := testNow.Add(-time.Hour)

	t.Run("one-time success is done", func(t *testing.T) {
		u := CompletionUpdates(models.ScheduledTask{TaskType: models.ScheduledTaskTypeOneTime, Due: due}, true, testNow)
		assert.Equal(t, models.ScheduledTaskStatusDone, u["status"])
		assert.NotContains(t, u, "due")
	})

	t.Run("one-time failure", func(t *testing.T) {
		u := CompletionUpdates(models.ScheduledTask{TaskType: models.ScheduledTaskTypeOneTime, Due: due}, false, testNow)
		assert.Equal(t, models.ScheduledTaskStatusFailure, u["status"])
	})

	t.Run("recurring moves to the next occurrence", func(t *testing.T) {
		task := models.ScheduledTask{TaskType: models.ScheduledTaskTypeRecurring, RecurringInterval: &rule, Due: due}
		u := CompletionUpdates(task, true, testNow)
		assert.Equal(t, models.ScheduledTaskStatusActive, u["status"])
		next, ok := u["due"].(time.Time)
		require.True(t, ok)
		assert.True(t, next.Equal(due.AddDate(0, 0, 1)))
	})

	t.Run("recurring without a rule is done", func(t *testing.T) {
		u := CompletionUpdates(models.ScheduledTask{TaskType: models.ScheduledTaskTypeRecurring, Due: due}, true, testNow)
		assert.Equal(t, models.ScheduledTaskStatusDone, u["status"])
	})
}

func TestRunnerRetriesThenFails(t *testing.T) {
	db := openTestDB(t)

	calls := 0
	registry := NewRegistry()
	registry.Register("flaky", func(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
		calls++
		return nil, errors.New("still broken")
	})

	task, err := BuildScheduledTask("flaky", map[string]interface{}{}, testNow.Add(-time.Minute), nil, models.ScheduledTaskTypeOneTime, 3)
	require.NoError(t, err)
	require.NoError(t, db.Create(task).Error)

	newTestRunner(db, registry).ProcessScheduledTasks(context.Background())

	assert.Equal(t, 3, calls)

	var stored models.ScheduledTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, models.ScheduledTaskStatusFailure, stored.Status)

	var history []models.ScheduledTaskHistory
	require.NoError(t, db.Order("attempt_number").Find(&history).Error)
	require.Len(t, history, 3)
	for i, h := range history {
		assert.Equal(t, i+1, h.AttemptNumber)
		assert.Equal(t, models.TaskRunFailure, h.Status)
		assert.Equal(t, "still broken", h.Result["error"])
	}
}

func TestRunnerRecoversOnRetry(t *testing.T) {
	db := openTestDB(t)

	calls := 0
	registry := NewRegistry()
	registry.Register("flaky", func(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("first try fails")
		}
		return map[string]interface{}{"status": "success"}, nil
	})

	task, err := BuildScheduledTask("flaky", nil, testNow.Add(-time.Minute), nil, models.ScheduledTaskTypeOneTime, 3)
	require.NoError(t, err)
	require.NoError(t, db.Create(task).Error)

	newTestRunner(db, registry).ProcessScheduledTasks(context.Background())

	assert.Equal(t, 2, calls)
	var stored models.ScheduledTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, models.ScheduledTaskStatusDone, stored.Status)
}

func TestRunnerHandlerNotFound(t *testing.T) {
	db := openTestDB(t)

	task, err := BuildScheduledTask("send_notification", nil, testNow.Add(-time.Minute), nil, models.ScheduledTaskTypeOneTime, 3)
	require.NoError(t, err)
	require.NoError(t, db.Create(task).Error)

	newTestRunner(db, NewRegistry()).ProcessScheduledTasks(context.Background())

	var stored models.ScheduledTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, models.ScheduledTaskStatusFailure, stored.Status)

	var history models.ScheduledTaskHistory
	require.NoError(t, db.First(&history).Error)
	assert.Equal(t, models.TaskRunHandlerNotFound, history.Status)
}

func TestRunnerSkipsFutureTasks(t *testing.T) {
	db := openTestDB(t)

	calls := 0
	registry := NewRegistry()
	registry.Register("log_info", func(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
		calls++
		return nil, nil
	})

	task, err := BuildScheduledTask("log_info", nil, testNow.Add(time.Hour), nil, models.ScheduledTaskTypeOneTime, 1)
	require.NoError(t, err)
	require.NoError(t, db.Create(task).Error)

	newTestRunner(db, registry).ProcessScheduledTasks(context.Background())
	assert.Zero(t, calls)
}
