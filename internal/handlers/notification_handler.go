package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	notifications, err := h.notificationService.List(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch notifications",
		})
	}

	out := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, dto.ToNotificationResponse(&notifications[i]))
	}
	return c.JSON(fiber.Map{
		"notifications": out,
		"count":         len(out),
	})
}
