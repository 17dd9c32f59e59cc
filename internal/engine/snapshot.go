package engine

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
)

// IssueGroup is the derived cluster of all reports sharing a normalized
// (address, category) key. It has no identity of its own and is recomputed
// from scratch on every pass.
type IssueGroup struct {
	Key          string               `json:"key"`
	Address      string               `json:"address"`
	Category     string               `json:"category"`
	Status       string               `json:"status"`
	UpvoteCount  int                  `json:"upvote_count"`
	ImageGallery []string             `json:"image_gallery"`
	SortDate     time.Time            `json:"sort_date"`
	Members      []models.IssueReport `json:"members"`
}

// Density describes the severity of one location cluster.
type Density struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	Tier      int     `json:"tier"`
	Radius    float64 `json:"radius"`
	Weight    float64 `json:"weight"`
}

// UserStats is the derived per-user gamification view.
type UserStats struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	ReportCount      int       `json:"report_count"`
	ExperiencePoints int       `json:"experience_points"`
	Titles           []string  `json:"titles"`
	Rank             int       `json:"rank"`
}

// LeaderboardEntry is one row of the global ranking.
type LeaderboardEntry struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	ExperiencePoints int       `json:"experience_points"`
	Rank             int       `json:"rank"`
}

// Snapshot is one atomic, internally consistent result of a recomputation
// pass. All fields are derived from the same input state; published snapshots
// are never mutated.
type Snapshot struct {
	Seq         uint64                  `json:"seq"`
	ComputedAt  time.Time               `json:"computed_at"`
	Groups      []IssueGroup            `json:"groups"`
	Density     map[string]Density      `json:"density_by_location"`
	Users       map[uuid.UUID]UserStats `json:"-"`
	Leaderboard []LeaderboardEntry      `json:"leaderboard"`
}
