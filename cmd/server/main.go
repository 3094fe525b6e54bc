package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"control_center_echo/internal/auth"
	"control_center_echo/internal/config"
	"control_center_echo/internal/logging"
	"control_center_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment")
	}

	result := config.Load(config.FromOS())
	if !result.OK() {
		for _, key := range result.Missing {
			log.Errorf("Missing required environment variable %s", key)
		}
		if result.Invalid != nil {
			log.WithError(result.Invalid).Error("Invalid configuration")
		}
		log.Fatal("Configuration failed to load")
	}
	cfg := result.Config

	if err := logging.Init(cfg.LogLevel, cfg.LogFile, cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	// Session and sign-in state store
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, sessions are kept in memory")
	}
	cache, err := services.NewStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	// Initialize Database
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = services.InitDB(cfg.DatabaseURL, cfg.LogLevel == "debug")
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		if err := services.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
	} else {
		log.Warn("DATABASE_URL not set, activity history disabled")
	}

	oidcClient := auth.NewBrowserClient(auth.ProviderConfig{
		Authority:              cfg.Authority,
		ClientID:               cfg.ClientID,
		ClientSecret:           cfg.ClientSecret,
		RedirectURI:            cfg.RedirectURI,
		PostSignoutRedirectURI: cfg.PostSignoutRedirectURI,
		Scopes:                 cfg.Scopes(),
		SessionTTL:             cfg.SessionTTL,
	}, cache)

	var assistant services.Assistant
	if cfg.GeminiAPIKey != "" {
		genaiAssistant, err := services.NewGenAIAssistant(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to initialize assistant: %v", err)
		}
		assistant = genaiAssistant
	} else {
		log.Warn("GEMINI_API_KEY not set, the chat assistant is disabled")
	}

	e := newServer(app{
		cfg:       cfg,
		auth:      auth.NewClient(oidcClient),
		sessions:  auth.NewSessionStore(cache),
		activity:  services.NewActivityLog(db),
		assistant: assistant,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
		os.Exit(1)
	}
}
