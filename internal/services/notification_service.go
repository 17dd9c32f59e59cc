package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService records and lists per-user activity notifications.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyUpvote records that actor upvoted the given report. Actor identity is
// denormalized into the row so listing never needs a join against profiles.
func (s *NotificationService) NotifyUpvote(ctx context.Context, report *models.IssueReport, actorID uuid.UUID) error {
	var actor models.UserProfile
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to fetch actor profile: %w", err)
	}

	notification := models.Notification{
		ID:            uuid.New(),
		TargetUserID:  report.AuthorID,
		ActorUserID:   actorID,
		ActorUsername: actor.Username,
		ActorAvatar:   actor.AvatarURL,
		Type:          models.NotificationUpvote,
		ReportID:      report.ID,
		ReportTitle:   report.Title,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Where("target_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
