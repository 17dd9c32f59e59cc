package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/engine"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title must be at most 255 characters")
	ErrAddressRequired    = errors.New("address is required")
	ErrAddressTooLong     = errors.New("address must be at most 255 characters")
	ErrDescriptionTooLong = errors.New("description must be at most 2000 characters")
	ErrTooManyImages      = errors.New("at most 5 images are allowed")
	ErrNotOwner           = errors.New("you can only delete your own reports")
)

type CreateReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	ImageURLs   []string `json:"image_urls"`
}

// ReportService implements all report mutations. Derived views are never
// computed here; every write flows through the backing store, whose change
// feed drives the aggregation coordinator.
type ReportService struct {
	db            *gorm.DB
	classifier    *ClassifierService
	geocoder      *GeocoderService
	notifications *NotificationService
}

func NewReportService(db *gorm.DB, classifier *ClassifierService, geocoder *GeocoderService, notifications *NotificationService) *ReportService {
	return &ReportService{
		db:            db,
		classifier:    classifier,
		geocoder:      geocoder,
		notifications: notifications,
	}
}

// Create validates, classifies and geocodes a submission, then persists the
// report. Classification and geocoding are both mandatory: any failure aborts
// the submission and no partial report is created.
func (s *ReportService) Create(ctx context.Context, authorID uuid.UUID, req *CreateReportRequest) (*models.IssueReport, error) {
	if err := validateReportInput(req); err != nil {
		return nil, err
	}

	category, err := s.classifier.Classify(ctx, strings.TrimSpace(req.Title+" "+req.Description))
	if err != nil {
		return nil, err
	}

	lat, lng, err := s.geocoder.Locate(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	var author models.UserProfile
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch author profile: %w", err)
	}

	report := models.IssueReport{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    category,
		Address:     strings.TrimSpace(req.Address),
		Latitude:    lat,
		Longitude:   lng,
		Status:      models.StatusUnresolved,
		DisplayName: author.Username,
		AvatarURL:   author.AvatarURL,
	}
	report.SetUpvoters(nil)
	report.SetImages(req.ImageURLs)

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

// Get fetches one report by id.
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*models.IssueReport, error) {
	var report models.IssueReport
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// ToggleUpvote adds the user to the upvoter set or removes them if already
// present. The row lock serializes conflicting toggles, and deriving the
// count from the set makes a double toggle restore the original values
// exactly. Returns the updated report and whether the user now upvotes it.
func (s *ReportService) ToggleUpvote(ctx context.Context, reportID, userID uuid.UUID) (*models.IssueReport, bool, error) {
	var report models.IssueReport
	var upvoted bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}

		upvoted = report.ToggleUpvote(userID)

		return tx.Model(&models.IssueReport{}).Where("id = ?", reportID).
			Updates(map[string]interface{}{
				"upvote_count": report.UpvoteCount,
				"upvoter_ids":  report.UpvoterIDs,
			}).Error
	})
	if err != nil {
		return nil, false, err
	}

	if upvoted && report.AuthorID != userID {
		if err := s.notifications.NotifyUpvote(ctx, &report, userID); err != nil {
			// The toggle itself succeeded; a lost notification is not fatal.
			slog.Error("failed to create upvote notification", "report_id", reportID.String(), "error", err)
		}
	}
	return &report, upvoted, nil
}

// CycleStatus advances one report through the fixed status cycle.
func (s *ReportService) CycleStatus(ctx context.Context, reportID uuid.UUID) (*models.IssueReport, error) {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	next := models.NextStatus(report.Status)
	if err := s.db.WithContext(ctx).Model(&models.IssueReport{}).
		Where("id = ?", reportID).Update("status", next).Error; err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	report.Status = next
	return report, nil
}

// CycleGroupStatus advances every member of the group containing the given
// report to the status following the anchor report's current one.
func (s *ReportService) CycleGroupStatus(ctx context.Context, reportID uuid.UUID) (int64, string, error) {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return 0, "", err
	}

	next := models.NextStatus(report.Status)
	addrKey, catKey := groupKeyParts(report)
	result := s.db.WithContext(ctx).Model(&models.IssueReport{}).
		Where(groupCondition, addrKey, catKey).
		Update("status", next)
	if result.Error != nil {
		return 0, "", fmt.Errorf("failed to update group status: %w", result.Error)
	}
	return result.RowsAffected, next, nil
}

// Delete removes one report. Non-admin callers may only delete their own.
func (s *ReportService) Delete(ctx context.Context, reportID, userID uuid.UUID, isAdmin bool) error {
	query := s.db.WithContext(ctx).Where("id = ?", reportID)
	if !isAdmin {
		var report models.IssueReport
		if err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		if report.AuthorID != userID {
			return ErrNotOwner
		}
	}

	result := query.Delete(&models.IssueReport{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// DeleteGroup removes every report in the group containing the given report.
func (s *ReportService) DeleteGroup(ctx context.Context, reportID uuid.UUID) (int64, error) {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return 0, err
	}

	addrKey, catKey := groupKeyParts(report)
	result := s.db.WithContext(ctx).
		Where(groupCondition, addrKey, catKey).
		Delete(&models.IssueReport{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete group: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByAuthor removes all reports authored by one user; used when an
// account is deleted.
func (s *ReportService) DeleteByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Delete(&models.IssueReport{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete reports: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// groupCondition matches rows by normalized (address, category) key, applying
// the same normalization rules as engine.GroupKey in SQL.
const groupCondition = "LOWER(TRIM(address)) = ? AND LOWER(TRIM(CASE WHEN category IS NULL OR TRIM(category) = '' THEN 'Other' ELSE category END)) = ?"

func groupKeyParts(report *models.IssueReport) (addrKey, catKey string) {
	addrKey = strings.ToLower(strings.TrimSpace(report.Address))
	cat := strings.TrimSpace(report.Category)
	if cat == "" {
		cat = engine.CategoryOther
	}
	return addrKey, strings.ToLower(cat)
}

func validateReportInput(req *CreateReportRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > 255 {
		return ErrTitleTooLong
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return ErrAddressRequired
	}
	if len(address) > 255 {
		return ErrAddressTooLong
	}
	if len(req.Description) > 2000 {
		return ErrDescriptionTooLong
	}
	if len(req.ImageURLs) > 5 {
		return ErrTooManyImages
	}
	return nil
}
