package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds per-user community state. ExperiencePoints is a persisted
// cache of the value the gamification engine recomputes from report counts.
type UserProfile struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username         string    `gorm:"not null;size:100;uniqueIndex" json:"username"`
	Email            string    `gorm:"size:255" json:"email"`
	AvatarURL        string    `gorm:"size:500" json:"avatar_url"`
	Role             string    `gorm:"size:20;default:'user'" json:"role"`
	ExperiencePoints int       `gorm:"not null;default:0" json:"experience_points"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
