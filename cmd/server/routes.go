package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"control_center_echo/internal/auth"
	"control_center_echo/internal/config"
	"control_center_echo/internal/handlers"
	appMiddleware "control_center_echo/internal/middleware"
	"control_center_echo/internal/services"
)

// chatBodyLimit caps chat request bodies before they reach the model.
const chatBodyLimit = "16K"

// app holds the dependencies shared by the handlers.
type app struct {
	cfg       *config.Config
	auth      *auth.Client
	sessions  *auth.SessionStore
	activity  services.ActivityLog
	assistant services.Assistant
}

// newServer builds the Echo instance with middleware and routes.
func newServer(a app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	e.Use(middleware.RequestID())
	e.Use(appMiddleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(appMiddleware.LoadSession(a.sessions))

	e.Static("/static", "web/static")

	registerRoutes(e, a)
	return e
}

func registerRoutes(e *echo.Echo, a app) {
	authHandler := handlers.NewAuthHandler(a.auth, a.sessions, a.activity, a.cfg.IsProduction())
	dashboardHandler := handlers.NewDashboardHandler()
	viewerHandler := handlers.NewViewerHandler(a.cfg.MarketingBaseURL, a.cfg.ITwinID, a.cfg.IModelID)
	activityHandler := handlers.NewActivityHandler(a.activity)
	settingsHandler := handlers.NewSettingsHandler(a.cfg)
	chatHandler := handlers.NewChatHandler(a.assistant, a.activity)

	// Auth routes
	e.POST("/auth/signin", authHandler.SignIn)
	e.POST("/auth/signout", authHandler.SignOut)
	e.GET("/signin-callback", authHandler.SigninCallback)

	// Chat API
	e.POST("/chat", chatHandler.ChatAPI, middleware.BodyLimit(chatBodyLimit))

	// Shell pages
	shell := e.Group("/app")
	shell.GET("", dashboardHandler.Dashboard)
	shell.GET("/viewer", viewerHandler.Viewer)
	shell.GET("/activity", activityHandler.Activity)
	shell.GET("/settings", settingsHandler.Settings)
	shell.POST("/chat/messages", chatHandler.WidgetMessage, middleware.BodyLimit(chatBodyLimit))

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/app")
	})

	// Anything else is a 404 page
	e.Any("/*", func(c echo.Context) error {
		return echo.ErrNotFound
	})
}
