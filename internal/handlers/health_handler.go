package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/engine"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	coordinator *engine.Coordinator
}

func NewHealthHandler(coordinator *engine.Coordinator) *HealthHandler {
	return &HealthHandler{coordinator: coordinator}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Engine:    h.coordinator.State().String(),
	})
}
