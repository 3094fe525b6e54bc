package tasks

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"control_center_echo/internal/models"
)

// DefaultRetentionDays is used when a purge task has no retention_days.
const DefaultRetentionDays = 30

// PurgeArgs are the arguments of the purge tasks.
type PurgeArgs struct {
	RetentionDays int `json:"retention_days"`
}

// purgeTask hard-deletes rows of one table older than the retention window.
type purgeTask struct {
	id    string
	model interface{}
	now   func() time.Time
}

// PurgeActivityTask removes old activity events.
var PurgeActivityTask = &purgeTask{id: "purge_activity", model: &models.ActivityEvent{}, now: time.Now}

// PurgeChatExchangesTask removes old assistant exchanges.
var PurgeChatExchangesTask = &purgeTask{id: "purge_chat_exchanges", model: &models.ChatExchange{}, now: time.Now}

func (t *purgeTask) TaskID() string {
	return t.id
}

// CreateTask builds a recurring purge task, e.g. with rule "FREQ=DAILY".
func (t *purgeTask) CreateTask(args PurgeArgs, due time.Time, rule string) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, due, &rule, models.ScheduledTaskTypeRecurring, 3)
}

// Cutoff parses retention_days and returns the oldest creation time kept.
func (t *purgeTask) Cutoff(args map[string]interface{}) (time.Time, int, error) {
	days, err := intArg(args, "retention_days", DefaultRetentionDays)
	if err != nil {
		return time.Time{}, 0, err
	}
	if days < 1 {
		return time.Time{}, 0, fmt.Errorf("retention_days must be at least 1, got %d", days)
	}
	return t.now().AddDate(0, 0, -days), days, nil
}

func (t *purgeTask) HandleExecution(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
	cutoff, days, err := t.Cutoff(args)
	if err != nil {
		return nil, err
	}

	res := db.WithContext(ctx).Unscoped().Where("created_at < ?", cutoff).Delete(t.model)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to purge: %w", res.Error)
	}

	log.WithFields(log.Fields{
		"task":    t.TaskID(),
		"deleted": res.RowsAffected,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Purged old records")

	return map[string]interface{}{
		"status":         "success",
		"deleted":        res.RowsAffected,
		"retention_days": days,
		"cutoff":         cutoff.Format(time.RFC3339),
	}, nil
}
