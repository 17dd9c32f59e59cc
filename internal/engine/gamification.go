package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
)

// PointsPerReport is the experience value of one authored report.
const PointsPerReport = 5

// Report-count title thresholds, evaluated independently; a user may hold
// several at once.
const (
	TitleFirstStep           = "First Step"
	TitleBeginnerReporter    = "Beginner Reporter"
	TitleExperiencedReporter = "Experienced Reporter"
	TitleExpertReporter      = "Expert Reporter"
	TitleReportChampion      = "Report Champion"
	TitleCommunityVeteran    = "Community Veteran"
)

// Specialty titles unlock when enough of a user's reports match a category
// family, tested as a case-insensitive substring of the category text.
var specialtyTitles = []struct {
	Substring string
	Threshold int
	Title     string
}{
	{"light", 100, "Lighting Legend"},
	{"road", 100, "Road Guardian"},
	{"waste", 50, "Cleanup Hero"},
	{"water", 50, "Water Watcher"},
}

// ExperienceWriter persists a recomputed experience-points value.
type ExperienceWriter interface {
	SetExperiencePoints(ctx context.Context, userID uuid.UUID, points int) error
}

// GamificationEngine derives per-user experience points, titles and global
// leaderboard ranks from the report and profile sets. Values are always
// recomputed from source counts, never incremented in place, so duplicate or
// out-of-order change notifications cannot corrupt them.
type GamificationEngine struct {
	writer ExperienceWriter
	now    func() time.Time
}

func NewGamificationEngine(writer ExperienceWriter) *GamificationEngine {
	return &GamificationEngine{writer: writer, now: time.Now}
}

// Compute derives the full per-user view and the global leaderboard. When a
// user's recomputed experience points differ from the persisted cache the new
// value is written back through the profile store; equal values are skipped
// to avoid redundant writes and write loops.
func (e *GamificationEngine) Compute(ctx context.Context, reports []models.IssueReport, profiles []models.UserProfile) (map[uuid.UUID]UserStats, []LeaderboardEntry) {
	authored := make(map[uuid.UUID][]models.IssueReport)
	for _, r := range reports {
		authored[r.AuthorID] = append(authored[r.AuthorID], r)
	}

	now := e.now()
	stats := make(map[uuid.UUID]UserStats, len(profiles))
	for _, p := range profiles {
		own := authored[p.ID]
		points := PointsPerReport * len(own)

		if points != p.ExperiencePoints && e.writer != nil {
			if err := e.writer.SetExperiencePoints(ctx, p.ID, points); err != nil {
				slog.Error("experience point write failed", "user_id", p.ID.String(), "error", err)
			}
		}

		stats[p.ID] = UserStats{
			UserID:           p.ID,
			Username:         p.Username,
			ReportCount:      len(own),
			ExperiencePoints: points,
			Titles:           Titles(own, p.CreatedAt, now),
		}
	}

	leaderboard := rank(stats)
	for _, entry := range leaderboard {
		s := stats[entry.UserID]
		s.Rank = entry.Rank
		stats[entry.UserID] = s
	}
	return stats, leaderboard
}

// Titles evaluates every threshold against the user's authored reports and
// account age. The result is monotonic while the report count does not
// decrease, and its order is fixed.
func Titles(authored []models.IssueReport, accountCreated, now time.Time) []string {
	var titles []string
	total := len(authored)

	switch {
	case total >= 100:
		titles = append(titles, TitleReportChampion)
	case total >= 50:
		titles = append(titles, TitleExpertReporter)
	case total >= 10:
		titles = append(titles, TitleExperiencedReporter)
	case total >= 1:
		titles = append(titles, TitleBeginnerReporter)
	}

	for _, st := range specialtyTitles {
		count := 0
		for _, r := range authored {
			if strings.Contains(strings.ToLower(r.Category), st.Substring) {
				count++
			}
		}
		if count >= st.Threshold {
			titles = append(titles, st.Title)
		}
	}

	if total >= 1 {
		titles = append(titles, TitleFirstStep)
	}
	if !accountCreated.IsZero() && now.Sub(accountCreated) >= 365*24*time.Hour {
		titles = append(titles, TitleCommunityVeteran)
	}
	return titles
}

// rank orders all users by experience points descending. Ties are broken by
// username then id so the ordering is deterministic within one snapshot.
func rank(stats map[uuid.UUID]UserStats) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(stats))
	for _, s := range stats {
		entries = append(entries, LeaderboardEntry{
			UserID:           s.UserID,
			Username:         s.Username,
			ExperiencePoints: s.ExperiencePoints,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ExperiencePoints != entries[j].ExperiencePoints {
			return entries[i].ExperiencePoints > entries[j].ExperiencePoints
		}
		if entries[i].Username != entries[j].Username {
			return entries[i].Username < entries[j].Username
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
