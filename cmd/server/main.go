package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/engine"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Change-feed triggers; the store adapters depend on these
	if err := database.EnsureChangeFeed(); err != nil {
		slog.Error("change feed setup failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Store adapters and aggregation engine
	reportStore := store.NewReportStore(database.DB, cfg.DSN())
	profileStore := store.NewProfileStore(database.DB, cfg.DSN())
	gamification := engine.NewGamificationEngine(profileStore)
	coordinator := engine.NewCoordinator(
		reportStore,
		profileStore,
		engine.NewClassifier(cfg.CoordTolerance),
		gamification,
	)

	if err := coordinator.Start(context.Background()); err != nil {
		slog.Error("coordinator start failed", "error", err)
		os.Exit(1)
	}

	// Services
	classifierService := services.NewClassifierService(cfg)
	geocoderService := services.NewGeocoderService(cfg)
	notificationService := services.NewNotificationService(database.DB)
	reportService := services.NewReportService(database.DB, classifierService, geocoderService, notificationService)
	profileService := services.NewProfileService(database.DB, reportService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(coordinator)
	reportHandler := handlers.NewReportHandler(reportService, coordinator)
	viewHandler := handlers.NewViewHandler(coordinator, profileService)
	profileHandler := handlers.NewProfileHandler(profileService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, healthHandler, reportHandler, viewHandler, profileHandler, notificationHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	coordinator.Stop()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
