package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
)

// DefaultCoordTolerance absorbs floating-point noise from geocoding: two
// coordinates within this delta on both axes count as the same location.
const DefaultCoordTolerance = 1e-4

// Display radius in meters and weight per tier, indexed by tier-1.
var (
	tierRadii   = [3]float64{40, 80, 140}
	tierWeights = [3]float64{0.3, 0.6, 1.0}
)

// Classifier maps co-located report counts to severity tiers. It is a pure
// function of (location, report set) and holds no state besides the tolerance.
type Classifier struct {
	Tolerance float64
}

func NewClassifier(tolerance float64) Classifier {
	if tolerance <= 0 {
		tolerance = DefaultCoordTolerance
	}
	return Classifier{Tolerance: tolerance}
}

// TierFor maps a co-located report count to a severity tier.
func TierFor(count int) int {
	switch {
	case count >= 6:
		return 3
	case count >= 2:
		return 2
	default:
		return 1
	}
}

func (c Classifier) sameLocation(lat1, lng1, lat2, lng2 float64) bool {
	return math.Abs(lat1-lat2) < c.Tolerance && math.Abs(lng1-lng2) < c.Tolerance
}

// At computes the density at one location against the full report set.
func (c Classifier) At(lat, lng float64, reports []models.IssueReport) Density {
	count := 0
	for _, r := range reports {
		if c.sameLocation(lat, lng, r.Latitude, r.Longitude) {
			count++
		}
	}
	return c.density(lat, lng, count)
}

// Classify clusters the full report set by location and returns the density
// for each cluster, keyed by the cluster seed's coordinates. Seeds are chosen
// in (createdAt, id) order so identical input sets yield identical maps.
func (c Classifier) Classify(reports []models.IssueReport) map[string]Density {
	ordered := make([]models.IssueReport, len(reports))
	copy(ordered, reports)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	out := make(map[string]Density)
	assigned := make([]bool, len(ordered))

	for i, seed := range ordered {
		if assigned[i] {
			continue
		}
		count := 0
		for j := i; j < len(ordered); j++ {
			if assigned[j] {
				continue
			}
			if c.sameLocation(seed.Latitude, seed.Longitude, ordered[j].Latitude, ordered[j].Longitude) {
				assigned[j] = true
				count++
			}
		}
		key := fmt.Sprintf("%.5f,%.5f", seed.Latitude, seed.Longitude)
		out[key] = c.density(seed.Latitude, seed.Longitude, count)
	}
	return out
}

func (c Classifier) density(lat, lng float64, count int) Density {
	tier := TierFor(count)
	return Density{
		Latitude:  lat,
		Longitude: lng,
		Count:     count,
		Tier:      tier,
		Radius:    tierRadii[tier-1],
		Weight:    tierWeights[tier-1],
	}
}
