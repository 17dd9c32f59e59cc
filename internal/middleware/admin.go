package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRequired rejects non-admin callers. Admin status comes from:
// 1. Config-based admin emails/IDs/token
// 2. DB-based profile Role field
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if isAdmin(c, db, cfg, adminEmails, adminUserIDs) {
			c.Locals("is_admin", true)
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

// AdminFlag runs the same checks as AdminRequired but never blocks; it only
// marks the request so handlers can relax ownership rules for admins.
func AdminFlag(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if isAdmin(c, db, cfg, adminEmails, adminUserIDs) {
			c.Locals("is_admin", true)
		}
		return c.Next()
	}
}

func isAdmin(c *fiber.Ctx, db *gorm.DB, cfg *config.Config, adminEmails, adminUserIDs []string) bool {
	// Check admin token header
	if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
		return true
	}

	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	email, _ := claims["email"].(string)
	sub, _ := claims["sub"].(string)

	// Check config-based admin lists
	if contains(adminEmails, email) || contains(adminUserIDs, sub) {
		return true
	}

	// Check DB-based role
	if sub != "" {
		userID, err := uuid.Parse(sub)
		if err == nil {
			var profile models.UserProfile
			if err := db.First(&profile, "id = ?", userID).Error; err == nil {
				return profile.Role == "admin"
			}
		}
	}
	return false
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
