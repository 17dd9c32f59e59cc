package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTaken    = errors.New("username is already taken")
)

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// ProfileService manages user profiles. Experience points on the profile row
// are a cache owned by the gamification engine and are never written here.
type ProfileService struct {
	db      *gorm.DB
	reports *ReportService
}

func NewProfileService(db *gorm.DB, reports *ReportService) *ProfileService {
	return &ProfileService{db: db, reports: reports}
}

// Get fetches one profile by id.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert creates the caller's profile on first use or updates the mutable
// fields of an existing one. The email comes from the verified token, never
// from the request body.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, email string, req *UpdateProfileRequest) (*models.UserProfile, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	var existing models.UserProfile
	err := s.db.WithContext(ctx).First(&existing, "id = ?", userID).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"username":   username,
			"avatar_url": req.AvatarURL,
		}
		if email != "" {
			updates["email"] = email
		}
		if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		return s.Get(ctx, userID)

	case errors.Is(err, gorm.ErrRecordNotFound):
		profile := models.UserProfile{
			ID:        userID,
			Username:  username,
			Email:     email,
			AvatarURL: req.AvatarURL,
			Role:      "user",
		}
		if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		return &profile, nil

	default:
		return nil, err
	}
}

// DeleteAccount removes the profile together with all reports it authored.
// Both deletions run in one transaction; the change feed then drives the
// recomputation that retires the user from every derived view.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("author_id = ?", userID).Delete(&models.IssueReport{}).Error; err != nil {
			return fmt.Errorf("failed to delete authored reports: %w", err)
		}
		if err := tx.Where("target_user_id = ? OR actor_user_id = ?", userID, userID).
			Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("failed to delete notifications: %w", err)
		}

		result := tx.Where("id = ?", userID).Delete(&models.UserProfile{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProfileNotFound
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
