package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"control_center_echo/internal/models"
)

// ActivityLog records what users do so the activity page can show it.
type ActivityLog interface {
	Record(ctx context.Context, event models.ActivityEvent) error
	RecordChat(ctx context.Context, exchange models.ChatExchange) error
	Recent(ctx context.Context, limit int) ([]models.ActivityEvent, error)
}

// NewActivityLog returns a database-backed log, or a no-op log when db is nil.
func NewActivityLog(db *gorm.DB) ActivityLog {
	if db == nil {
		return NopActivityLog{}
	}
	return &DBActivityLog{db: db}
}

// DBActivityLog stores activity in Postgres.
type DBActivityLog struct {
	db *gorm.DB
}

func (l *DBActivityLog) Record(ctx context.Context, event models.ActivityEvent) error {
	if err := l.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// RecordChat stores the exchange and a matching chat activity event.
func (l *DBActivityLog) RecordChat(ctx context.Context, exchange models.ChatExchange) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&exchange).Error; err != nil {
			return fmt.Errorf("record chat exchange: %w", err)
		}
		event := models.ActivityEvent{
			Kind:    models.ActivityKindChat,
			Subject: exchange.Subject,
			Message: exchange.Message,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		return nil
	})
}

func (l *DBActivityLog) Recent(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	var events []models.ActivityEvent
	err := l.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return events, nil
}

// NopActivityLog discards everything. Used when DATABASE_URL is not set.
type NopActivityLog struct{}

func (NopActivityLog) Record(context.Context, models.ActivityEvent) error    { return nil }
func (NopActivityLog) RecordChat(context.Context, models.ChatExchange) error { return nil }
func (NopActivityLog) Recent(context.Context, int) ([]models.ActivityEvent, error) {
	return nil, nil
}
