package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	viewHandler *handlers.ViewHandler,
	profileHandler *handlers.ProfileHandler,
	notificationHandler *handlers.NotificationHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Check)

	jwt := middleware.JWTProtected(cfg)
	adminFlag := middleware.AdminFlag(db, cfg)

	// Derived read views (JWT required)
	api.Get("/feed", jwt, viewHandler.Feed)
	api.Get("/map", jwt, viewHandler.Map)
	api.Get("/leaderboard", jwt, viewHandler.Leaderboard)
	api.Get("/me/stats", jwt, viewHandler.MyStats)
	api.Get("/stream", jwt, viewHandler.Stream)

	// Reports — submission rate limit is stricter: 10 req/min per IP
	submitLimiter := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	api.Post("/reports", jwt, submitLimiter, reportHandler.Create)
	api.Get("/reports/:id", jwt, reportHandler.Get)
	api.Post("/reports/:id/upvote", jwt, reportHandler.ToggleUpvote)
	api.Delete("/reports/:id", jwt, adminFlag, reportHandler.Delete)

	// Profile and notifications
	api.Get("/profile", jwt, profileHandler.Get)
	api.Put("/profile", jwt, profileHandler.Update)
	api.Delete("/profile", jwt, profileHandler.DeleteAccount)
	api.Get("/notifications", jwt, notificationHandler.List)

	// Admin: status cycling and group management
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Post("/reports/:id/status", reportHandler.CycleStatus)
	admin.Post("/reports/:id/group/status", reportHandler.CycleGroupStatus)
	admin.Delete("/reports/:id/group", reportHandler.DeleteGroup)
}
