package tasks

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"control_center_echo/internal/models"
)

// Runner executes due scheduled tasks.
type Runner struct {
	db       *gorm.DB
	registry *Registry
	now      func() time.Time
}

// NewRunner creates a runner resolving handlers in registry.
func NewRunner(db *gorm.DB, registry *Registry) *Runner {
	return &Runner{db: db, registry: registry, now: time.Now}
}

// ProcessScheduledTasks runs every active task whose due time has passed.
// Tasks run one after another; a cancelled ctx stops between tasks.
func (r *Runner) ProcessScheduledTasks(ctx context.Context) {
	log.Debug("Checking for pending tasks...")

	var pendingTasks []models.ScheduledTask
	err := r.db.WithContext(ctx).
		Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, r.now()).
		Order("due").
		Find(&pendingTasks).Error
	if err != nil {
		log.WithError(err).Error("Error fetching pending tasks")
		return
	}

	if len(pendingTasks) == 0 {
		log.Debug("No pending tasks found.")
		return
	}

	log.Infof("Found %d pending tasks.", len(pendingTasks))

	for _, task := range pendingTasks {
		if ctx.Err() != nil {
			return
		}
		r.ExecuteTask(ctx, task, 1)
	}
}

// ExecuteTask runs task once, writes its history and retries until
// MaxAttempt attempts have been made.
func (r *Runner) ExecuteTask(ctx context.Context, task models.ScheduledTask, curAttempt int) {
	entry := log.WithFields(log.Fields{"task": task.TaskName, "task_id": task.ID, "attempt": curAttempt})
	entry.Info("Processing task")

	if task.Arguments == nil {
		task.Arguments = make(map[string]interface{})
	}

	handler, found := r.registry.Get(task.TaskName)
	if !found {
		entry.Warn("Task handler not found. Marking as failure.")

		now := r.now()
		r.save(ctx, &task, map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		}, models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          models.TaskRunHandlerNotFound,
			AttemptNumber:   curAttempt,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		})
		return
	}

	startTime := r.now()
	result, err := handler(ctx, r.db.WithContext(ctx), task.Arguments)
	runtimeMs := int(r.now().Sub(startTime).Milliseconds())

	status := models.TaskRunSuccess
	resultData := result
	if err != nil {
		status = models.TaskRunFailure
		resultData = map[string]interface{}{"error": err.Error()}
		entry.WithError(err).Warn("Task failed")
	} else {
		entry.Info("Task completed successfully.")
	}

	history := models.ScheduledTaskHistory{
		ScheduledTaskID: task.ID,
		TaskName:        task.TaskName,
		RunAt:           startTime,
		RuntimeMs:       runtimeMs,
		Status:          status,
		AttemptNumber:   curAttempt,
		Arguments:       task.Arguments,
		Result:          resultData,
	}

	if err != nil && curAttempt < task.MaxAttempt && ctx.Err() == nil {
		if cerr := r.db.WithContext(ctx).Create(&history).Error; cerr != nil {
			entry.WithError(cerr).Error("Failed to write task history")
		}
		r.ExecuteTask(ctx, task, curAttempt+1)
		return
	}

	r.save(ctx, &task, CompletionUpdates(task, err == nil, startTime), history)
}

// save writes the history row and the task updates in one transaction.
func (r *Runner) save(ctx context.Context, task *models.ScheduledTask, updates map[string]interface{}, history models.ScheduledTaskHistory) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return tx.Model(task).Updates(updates).Error
	})
	if err != nil {
		log.WithError(err).WithField("task_id", task.ID).Error("Failed to save task result")
	}
}

// CompletionUpdates returns the column updates for a task after its final
// attempt. One-time tasks end done or failure. Recurring tasks stay active
// with the next occurrence as due, even after a failed run; they are done
// once the rule has no later occurrence.
func CompletionUpdates(task models.ScheduledTask, succeeded bool, runAt time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"last_run": &runAt,
	}

	if task.TaskType != models.ScheduledTaskTypeRecurring {
		if succeeded {
			updates["status"] = models.ScheduledTaskStatusDone
		} else {
			updates["status"] = models.ScheduledTaskStatusFailure
		}
		return updates
	}

	nextDue := task.NextDueAfter(runAt)
	// a next due that does not move forward would run the task again forever
	if nextDue.After(task.Due) {
		updates["status"] = models.ScheduledTaskStatusActive
		updates["due"] = nextDue
	} else if succeeded {
		updates["status"] = models.ScheduledTaskStatusDone
	} else {
		updates["status"] = models.ScheduledTaskStatusFailure
	}
	return updates
}
