package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationUpvote = "upvote"
)

// Notification is an in-app notification addressed to one user.
type Notification struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TargetUserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"target_user_id"`
	ActorUserID   uuid.UUID `gorm:"type:uuid;not null" json:"actor_user_id"`
	ActorUsername string    `gorm:"size:100" json:"actor_username"`
	ActorAvatar   string    `gorm:"size:500" json:"actor_avatar"`
	Type          string    `gorm:"size:30;not null" json:"type"`
	ReportID      uuid.UUID `gorm:"type:uuid" json:"report_id"`
	ReportTitle   string    `gorm:"size:255" json:"report_title"`
	CreatedAt     time.Time `json:"created_at"`
}
