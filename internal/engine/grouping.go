package engine

import (
	"sort"
	"strings"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
)

// CategoryOther is the default category for reports submitted without one.
const CategoryOther = "Other"

// GroupKey derives the grouping key from raw address and category text.
// Two reports belong to the same group iff their keys are identical.
func GroupKey(address, category string) string {
	cat := strings.TrimSpace(category)
	if cat == "" {
		cat = CategoryOther
	}
	return strings.ToLower(strings.TrimSpace(address)) + "|" + strings.ToLower(cat)
}

// BuildGroups partitions the report set into groups and computes per-group
// aggregates. The output is deterministic for identical input sets regardless
// of arrival order: members are ordered by (createdAt, id) and groups by
// sortDate descending with the key as tie-break.
func BuildGroups(reports []models.IssueReport) []IssueGroup {
	ordered := make([]models.IssueReport, len(reports))
	copy(ordered, reports)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	buckets := make(map[string][]models.IssueReport)
	var keys []string
	for _, r := range ordered {
		key := GroupKey(r.Address, r.Category)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	groups := make([]IssueGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, aggregate(key, buckets[key]))
	}

	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].SortDate.Equal(groups[j].SortDate) {
			return groups[i].SortDate.After(groups[j].SortDate)
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// aggregate applies the same rules to every group; a single-member group is
// not special-cased.
func aggregate(key string, members []models.IssueReport) IssueGroup {
	group := IssueGroup{
		Key:      key,
		Address:  members[0].Address,
		Category: strings.TrimSpace(members[0].Category),
		Members:  members,
		SortDate: members[0].CreatedAt,
	}
	if group.Category == "" {
		group.Category = CategoryOther
	}

	allResolved := true
	allUnresolved := true
	seen := make(map[string]bool)

	for _, m := range members {
		switch models.NormalizeStatus(m.Status) {
		case models.StatusResolved:
			allUnresolved = false
		case models.StatusUnresolved:
			allResolved = false
		default:
			allResolved = false
			allUnresolved = false
		}

		group.UpvoteCount += m.UpvoteCount

		for _, img := range m.Images() {
			if img == "" || seen[img] {
				continue
			}
			seen[img] = true
			group.ImageGallery = append(group.ImageGallery, img)
		}

		if m.CreatedAt.After(group.SortDate) {
			group.SortDate = m.CreatedAt
		}
	}

	switch {
	case allResolved:
		group.Status = models.StatusResolved
	case allUnresolved:
		group.Status = models.StatusUnresolved
	default:
		group.Status = models.StatusInProgress
	}
	return group
}
