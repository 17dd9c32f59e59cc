package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/engine"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
)

type ReportResponse struct {
	ID          uuid.UUID   `json:"id"`
	AuthorID    uuid.UUID   `json:"author_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Address     string      `json:"address"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Status      string      `json:"status"`
	UpvoteCount int         `json:"upvote_count"`
	UpvoterIDs  []uuid.UUID `json:"upvoter_ids"`
	ImageURLs   []string    `json:"image_urls"`
	DisplayName string      `json:"display_name"`
	AvatarURL   string      `json:"avatar_url"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func ToReportResponse(r *models.IssueReport) ReportResponse {
	upvoters := r.Upvoters()
	if upvoters == nil {
		upvoters = []uuid.UUID{}
	}
	images := r.Images()
	if images == nil {
		images = []string{}
	}
	return ReportResponse{
		ID:          r.ID,
		AuthorID:    r.AuthorID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Address:     r.Address,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Status:      r.Status,
		UpvoteCount: r.UpvoteCount,
		UpvoterIDs:  upvoters,
		ImageURLs:   images,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ReportDetailResponse pairs one report with its group from the latest
// snapshot. Group is null before the first snapshot covers the report.
type ReportDetailResponse struct {
	Report ReportResponse `json:"report"`
	Group  *GroupResponse `json:"group"`
}

type UpvoteResponse struct {
	Report  ReportResponse `json:"report"`
	Upvoted bool           `json:"upvoted"`
}

type GroupStatusResponse struct {
	Updated int64  `json:"updated"`
	Status  string `json:"status"`
}

type GroupDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type GroupResponse struct {
	Key          string           `json:"key"`
	Address      string           `json:"address"`
	Category     string           `json:"category"`
	Status       string           `json:"status"`
	UpvoteCount  int              `json:"upvote_count"`
	ImageGallery []string         `json:"image_gallery"`
	SortDate     time.Time        `json:"sort_date"`
	Members      []ReportResponse `json:"members"`
}

func ToGroupResponse(g *engine.IssueGroup) GroupResponse {
	members := make([]ReportResponse, 0, len(g.Members))
	for i := range g.Members {
		members = append(members, ToReportResponse(&g.Members[i]))
	}
	gallery := g.ImageGallery
	if gallery == nil {
		gallery = []string{}
	}
	return GroupResponse{
		Key:          g.Key,
		Address:      g.Address,
		Category:     g.Category,
		Status:       g.Status,
		UpvoteCount:  g.UpvoteCount,
		ImageGallery: gallery,
		SortDate:     g.SortDate,
		Members:      members,
	}
}

type FeedResponse struct {
	Seq        uint64          `json:"seq"`
	ComputedAt time.Time       `json:"computed_at"`
	Groups     []GroupResponse `json:"groups"`
}

func ToFeedResponse(snap *engine.Snapshot) FeedResponse {
	groups := make([]GroupResponse, 0, len(snap.Groups))
	for i := range snap.Groups {
		groups = append(groups, ToGroupResponse(&snap.Groups[i]))
	}
	return FeedResponse{
		Seq:        snap.Seq,
		ComputedAt: snap.ComputedAt,
		Groups:     groups,
	}
}

type MapResponse struct {
	Seq        uint64                    `json:"seq"`
	ComputedAt time.Time                 `json:"computed_at"`
	Clusters   map[string]engine.Density `json:"clusters"`
}

type LeaderboardResponse struct {
	Seq        uint64                    `json:"seq"`
	ComputedAt time.Time                 `json:"computed_at"`
	Entries    []engine.LeaderboardEntry `json:"entries"`
}
