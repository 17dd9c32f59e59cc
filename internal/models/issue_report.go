package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report status values. Status cycles Unresolved -> InProgress -> Resolved -> Unresolved.
const (
	StatusUnresolved = "Unresolved"
	StatusInProgress = "InProgress"
	StatusResolved   = "Resolved"
)

// NormalizeStatus maps unknown or empty status values to Unresolved.
func NormalizeStatus(s string) string {
	switch s {
	case StatusUnresolved, StatusInProgress, StatusResolved:
		return s
	}
	return StatusUnresolved
}

// NextStatus returns the next status in the fixed three-step cycle.
func NextStatus(s string) string {
	switch NormalizeStatus(s) {
	case StatusUnresolved:
		return StatusInProgress
	case StatusInProgress:
		return StatusResolved
	default:
		return StatusUnresolved
	}
}

// IssueReport is a citizen-submitted issue report.
type IssueReport struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Title       string         `gorm:"not null;size:255" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:100;index" json:"category"`
	Address     string         `gorm:"not null;size:255;index" json:"address"`
	Latitude    float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude   float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	Status      string         `gorm:"size:20;not null;default:'Unresolved'" json:"status"`
	UpvoteCount int            `gorm:"not null;default:0" json:"upvote_count"`
	UpvoterIDs  datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"upvoter_ids"`
	ImageURLs   datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"image_urls"`
	DisplayName string         `gorm:"size:100" json:"display_name"`
	AvatarURL   string         `gorm:"size:500" json:"avatar_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Upvoters decodes the upvoter-id set. A corrupt column yields an empty set.
func (r *IssueReport) Upvoters() []uuid.UUID {
	var ids []uuid.UUID
	if len(r.UpvoterIDs) > 0 {
		_ = json.Unmarshal(r.UpvoterIDs, &ids)
	}
	return ids
}

// SetUpvoters encodes the upvoter-id set back into the JSON column.
func (r *IssueReport) SetUpvoters(ids []uuid.UUID) {
	b, _ := json.Marshal(ids)
	r.UpvoterIDs = datatypes.JSON(b)
}

// ToggleUpvote flips the user's membership in the upvoter set and rederives
// the count from the set, so applying it twice restores both fields exactly.
// Returns whether the user is in the set afterwards.
func (r *IssueReport) ToggleUpvote(userID uuid.UUID) bool {
	ids := r.Upvoters()
	kept := ids[:0]
	for _, id := range ids {
		if id != userID {
			kept = append(kept, id)
		}
	}
	added := false
	if len(kept) == len(ids) {
		kept = append(kept, userID)
		added = true
	}
	r.SetUpvoters(kept)
	r.UpvoteCount = len(kept)
	return added
}

// HasUpvoted reports whether the given user is in the upvoter set.
func (r *IssueReport) HasUpvoted(userID uuid.UUID) bool {
	for _, id := range r.Upvoters() {
		if id == userID {
			return true
		}
	}
	return false
}

// Images decodes the image URL list, submission order preserved.
func (r *IssueReport) Images() []string {
	var urls []string
	if len(r.ImageURLs) > 0 {
		_ = json.Unmarshal(r.ImageURLs, &urls)
	}
	return urls
}

// SetImages encodes the image URL list into the JSON column.
func (r *IssueReport) SetImages(urls []string) {
	b, _ := json.Marshal(urls)
	r.ImageURLs = datatypes.JSON(b)
}
