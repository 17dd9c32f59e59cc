package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes map[uuid.UUID][]int
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{writes: make(map[uuid.UUID][]int)}
}

func (w *recordingWriter) SetExperiencePoints(_ context.Context, userID uuid.UUID, points int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes[userID] = append(w.writes[userID], points)
	return nil
}

func makeProfile(username string, points int, createdAt time.Time) models.UserProfile {
	return models.UserProfile{
		ID:               uuid.New(),
		Username:         username,
		ExperiencePoints: points,
		CreatedAt:        createdAt,
	}
}

func authoredBy(author models.UserProfile, category string, n int) []models.IssueReport {
	var reports []models.IssueReport
	for i := 0; i < n; i++ {
		r := makeReport("addr", category, models.StatusUnresolved, time.Now())
		r.AuthorID = author.ID
		reports = append(reports, r)
	}
	return reports
}

func TestComputeExperiencePoints(t *testing.T) {
	writer := newRecordingWriter()
	e := NewGamificationEngine(writer)

	alice := makeProfile("alice", 0, time.Now())
	bob := makeProfile("bob", 5, time.Now())

	reports := append(authoredBy(alice, "Roads", 3), authoredBy(bob, "Water", 1)...)

	stats, _ := e.Compute(context.Background(), reports, []models.UserProfile{alice, bob})
	assert.Equal(t, 15, stats[alice.ID].ExperiencePoints)
	assert.Equal(t, 5, stats[bob.ID].ExperiencePoints)

	// Only alice's cached value differed, so only hers is written back.
	assert.Equal(t, []int{15}, writer.writes[alice.ID])
	assert.Empty(t, writer.writes[bob.ID])
}

func TestComputeRecalculatesFromScratch(t *testing.T) {
	e := NewGamificationEngine(nil)
	alice := makeProfile("alice", 500, time.Now())

	// Stale cache is ignored: the derived value comes from the report count.
	stats, _ := e.Compute(context.Background(), authoredBy(alice, "Roads", 2), []models.UserProfile{alice})
	assert.Equal(t, 10, stats[alice.ID].ExperiencePoints)

	stats, _ = e.Compute(context.Background(), nil, []models.UserProfile{alice})
	assert.Equal(t, 0, stats[alice.ID].ExperiencePoints)
	assert.Equal(t, 0, stats[alice.ID].ReportCount)
}

func TestTitlesBands(t *testing.T) {
	now := time.Now()
	created := now.Add(-time.Hour)

	cases := []struct {
		count int
		want  []string
	}{
		{0, nil},
		{1, []string{TitleBeginnerReporter, TitleFirstStep}},
		{9, []string{TitleBeginnerReporter, TitleFirstStep}},
		{10, []string{TitleExperiencedReporter, TitleFirstStep}},
		{49, []string{TitleExperiencedReporter, TitleFirstStep}},
		{50, []string{TitleExpertReporter, TitleFirstStep}},
		{99, []string{TitleExpertReporter, TitleFirstStep}},
		{100, []string{TitleReportChampion, TitleFirstStep}},
	}

	author := makeProfile("alice", 0, created)
	for _, tc := range cases {
		got := Titles(authoredBy(author, "Hazards", tc.count), created, now)
		assert.Equal(t, tc.want, got, "count %d", tc.count)
	}
}

func TestTitlesSpecialty(t *testing.T) {
	now := time.Now()
	created := now.Add(-time.Hour)
	author := makeProfile("alice", 0, created)

	got := Titles(authoredBy(author, "Lighting", 100), created, now)
	assert.Contains(t, got, "Lighting Legend")
	assert.Contains(t, got, TitleReportChampion)

	got = Titles(authoredBy(author, "Waste", 50), created, now)
	assert.Contains(t, got, "Cleanup Hero")
	assert.NotContains(t, got, "Water Watcher")

	// Substring match is case-insensitive on the category text
	got = Titles(authoredBy(author, "WATER", 50), created, now)
	assert.Contains(t, got, "Water Watcher")

	got = Titles(authoredBy(author, "Roads", 99), created, now)
	assert.NotContains(t, got, "Road Guardian")
}

func TestTitlesCommunityVeteran(t *testing.T) {
	now := time.Now()
	author := makeProfile("alice", 0, now)

	got := Titles(authoredBy(author, "Other", 1), now.Add(-366*24*time.Hour), now)
	assert.Contains(t, got, TitleCommunityVeteran)

	got = Titles(authoredBy(author, "Other", 1), now.Add(-300*24*time.Hour), now)
	assert.NotContains(t, got, TitleCommunityVeteran)

	// Veteran does not require any reports
	got = Titles(nil, now.Add(-400*24*time.Hour), now)
	assert.Equal(t, []string{TitleCommunityVeteran}, got)
}

func TestLeaderboardOrdering(t *testing.T) {
	e := NewGamificationEngine(nil)
	now := time.Now()

	alice := makeProfile("alice", 0, now)
	bob := makeProfile("bob", 0, now)
	carol := makeProfile("carol", 0, now)

	reports := append(authoredBy(carol, "Roads", 2), authoredBy(alice, "Roads", 1)...)
	reports = append(reports, authoredBy(bob, "Roads", 1)...)

	stats, leaderboard := e.Compute(context.Background(), reports, []models.UserProfile{alice, bob, carol})
	require.Len(t, leaderboard, 3)

	assert.Equal(t, carol.ID, leaderboard[0].UserID)
	assert.Equal(t, 1, leaderboard[0].Rank)
	// Equal points fall back to username order
	assert.Equal(t, alice.ID, leaderboard[1].UserID)
	assert.Equal(t, bob.ID, leaderboard[2].UserID)

	assert.Equal(t, 1, stats[carol.ID].Rank)
	assert.Equal(t, 2, stats[alice.ID].Rank)
	assert.Equal(t, 3, stats[bob.ID].Rank)
}

func TestLeaderboardDeterministicOnFullTie(t *testing.T) {
	e := NewGamificationEngine(nil)
	now := time.Now()

	a := makeProfile("same", 0, now)
	b := makeProfile("same", 0, now)
	lower, higher := a, b
	if b.ID.String() < a.ID.String() {
		lower, higher = b, a
	}

	for i := 0; i < 5; i++ {
		_, leaderboard := e.Compute(context.Background(), nil, []models.UserProfile{a, b})
		require.Len(t, leaderboard, 2)
		assert.Equal(t, lower.ID, leaderboard[0].UserID)
		assert.Equal(t, higher.ID, leaderboard[1].UserID)
	}
}

func TestComputeIgnoresReportsWithoutProfile(t *testing.T) {
	e := NewGamificationEngine(nil)
	ghost := makeProfile("ghost", 0, time.Now())

	stats, leaderboard := e.Compute(context.Background(), authoredBy(ghost, "Roads", 3), nil)
	assert.Empty(t, stats)
	assert.Empty(t, leaderboard)
}
