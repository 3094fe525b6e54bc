package services

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"control_center_echo/internal/models"
)

// Pool sizes the sql.DB behind a gorm handle.
type Pool struct {
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
}

// DefaultPool suits the web server and the worker sharing one Postgres.
var DefaultPool = Pool{MaxIdle: 10, MaxOpen: 100, MaxLifetime: time.Hour}

// migrated lists every table the server and the worker use.
var migrated = []interface{}{
	&models.ActivityEvent{},
	&models.ChatExchange{},
	&models.ScheduledTask{},
	&models.ScheduledTaskHistory{},
}

// InitDB opens Postgres at dsn with DefaultPool. SQL statements are logged
// through logrus when debug is set.
func InitDB(dsn string, debug bool) (*gorm.DB, error) {
	db, err := OpenDB(postgres.Open(dsn), DefaultPool, debug)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")
	return db, nil
}

// OpenDB opens any gorm dialector and applies pool.
func OpenDB(dialector gorm.Dialector, pool Pool, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger(debug)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)

	return db, nil
}

func gormLogger(debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(log.StandardLogger(), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// AutoMigrate creates or updates the tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(migrated...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.WithField("tables", len(migrated)).Info("Database migrations completed")
	return nil
}
