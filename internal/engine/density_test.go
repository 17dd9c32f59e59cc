package engine

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLocated(lat, lng float64, createdAt time.Time) models.IssueReport {
	r := makeReport("somewhere", "Other", models.StatusUnresolved, createdAt)
	r.Latitude = lat
	r.Longitude = lng
	return r
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, 1, TierFor(0))
	assert.Equal(t, 1, TierFor(1))
	assert.Equal(t, 2, TierFor(2))
	assert.Equal(t, 2, TierFor(5))
	assert.Equal(t, 3, TierFor(6))
	assert.Equal(t, 3, TierFor(100))
}

func TestDensityAt(t *testing.T) {
	c := NewClassifier(0)
	now := time.Now()
	reports := []models.IssueReport{
		makeLocated(45.75, 21.22, now),
		makeLocated(45.75001, 21.22001, now), // inside tolerance
		makeLocated(45.76, 21.22, now),       // outside
	}

	d := c.At(45.75, 21.22, reports)
	assert.Equal(t, 2, d.Count)
	assert.Equal(t, 2, d.Tier)
	assert.Equal(t, 80.0, d.Radius)
	assert.Equal(t, 0.6, d.Weight)
}

func TestDensityTierAttributes(t *testing.T) {
	c := NewClassifier(0)
	now := time.Now()

	var reports []models.IssueReport
	for i := 0; i < 7; i++ {
		reports = append(reports, makeLocated(45.75, 21.22, now.Add(time.Duration(i)*time.Second)))
	}

	d := c.At(45.75, 21.22, reports)
	assert.Equal(t, 7, d.Count)
	assert.Equal(t, 3, d.Tier)
	assert.Equal(t, 140.0, d.Radius)
	assert.Equal(t, 1.0, d.Weight)

	lone := c.At(40.0, 20.0, reports)
	assert.Equal(t, 0, lone.Count)
	assert.Equal(t, 1, lone.Tier)
	assert.Equal(t, 40.0, lone.Radius)
	assert.Equal(t, 0.3, lone.Weight)
}

func TestClassifyClusters(t *testing.T) {
	c := NewClassifier(0)
	now := time.Now()
	reports := []models.IssueReport{
		makeLocated(45.75, 21.22, now),
		makeLocated(45.75002, 21.22003, now.Add(time.Second)),
		makeLocated(45.78, 21.25, now.Add(2*time.Second)),
	}

	clusters := c.Classify(reports)
	require.Len(t, clusters, 2)

	pair, ok := clusters["45.75000,21.22000"]
	require.True(t, ok, "seed key comes from the earliest member")
	assert.Equal(t, 2, pair.Count)
	assert.Equal(t, 2, pair.Tier)

	single, ok := clusters["45.78000,21.25000"]
	require.True(t, ok)
	assert.Equal(t, 1, single.Count)
	assert.Equal(t, 1, single.Tier)
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(0)
	now := time.Now()
	reports := []models.IssueReport{
		makeLocated(45.75, 21.22, now),
		makeLocated(45.75001, 21.22001, now.Add(time.Second)),
		makeLocated(45.76, 21.23, now.Add(2*time.Second)),
	}
	shuffled := []models.IssueReport{reports[2], reports[1], reports[0]}

	assert.Equal(t, c.Classify(reports), c.Classify(shuffled))
}

func TestClassifyEmpty(t *testing.T) {
	c := NewClassifier(0)
	assert.Empty(t, c.Classify(nil))
}

func TestNewClassifierDefaultsTolerance(t *testing.T) {
	assert.Equal(t, DefaultCoordTolerance, NewClassifier(0).Tolerance)
	assert.Equal(t, DefaultCoordTolerance, NewClassifier(-1).Tolerance)
	assert.Equal(t, 0.001, NewClassifier(0.001).Tolerance)
}
