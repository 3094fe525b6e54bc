package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"control_center_echo/internal/config"
	"control_center_echo/internal/logging"
	"control_center_echo/internal/services"
	"control_center_echo/internal/tasks"
)

const pollInterval = 5 * time.Minute

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment")
	}

	cfg, err := config.LoadWorker(config.FromOS())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogFile, false); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	db, err := services.InitDB(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Task Registry
	tasks.DefineTasks(tasks.GlobalRegistry)
	runner := tasks.NewRunner(db, tasks.GlobalRegistry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("tasks", tasks.GlobalRegistry.Names()).Info("Worker started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// Run once on start, then every tick.
	runner.ProcessScheduledTasks(ctx)

	for {
		select {
		case <-ticker.C:
			runner.ProcessScheduledTasks(ctx)
		case <-ctx.Done():
			log.Info("Shutting down worker...")
			return
		}
	}
}
