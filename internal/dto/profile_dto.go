package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	AvatarURL        string    `json:"avatar_url"`
	Role             string    `json:"role"`
	ExperiencePoints int       `json:"experience_points"`
	CreatedAt        time.Time `json:"created_at"`
}

func ToProfileResponse(p *models.UserProfile) ProfileResponse {
	return ProfileResponse{
		ID:               p.ID,
		Username:         p.Username,
		Email:            p.Email,
		AvatarURL:        p.AvatarURL,
		Role:             p.Role,
		ExperiencePoints: p.ExperiencePoints,
		CreatedAt:        p.CreatedAt,
	}
}

// StatsResponse is the caller's own gamification view. Rank is null until the
// user appears in a computed snapshot.
type StatsResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	ReportCount      int       `json:"report_count"`
	ExperiencePoints int       `json:"experience_points"`
	Titles           []string  `json:"titles"`
	Rank             *int      `json:"rank"`
}

type NotificationResponse struct {
	ID            uuid.UUID `json:"id"`
	ActorUserID   uuid.UUID `json:"actor_user_id"`
	ActorUsername string    `json:"actor_username"`
	ActorAvatar   string    `json:"actor_avatar"`
	Type          string    `json:"type"`
	ReportID      uuid.UUID `json:"report_id"`
	ReportTitle   string    `json:"report_title"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		ActorUserID:   n.ActorUserID,
		ActorUsername: n.ActorUsername,
		ActorAvatar:   n.ActorAvatar,
		Type:          n.Type,
		ReportID:      n.ReportID,
		ReportTitle:   n.ReportTitle,
		CreatedAt:     n.CreatedAt,
	}
}
