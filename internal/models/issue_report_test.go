package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusCycle(t *testing.T) {
	assert.Equal(t, StatusInProgress, NextStatus(StatusUnresolved))
	assert.Equal(t, StatusResolved, NextStatus(StatusInProgress))
	assert.Equal(t, StatusUnresolved, NextStatus(StatusResolved))

	// Three applications return to the start from any point in the cycle.
	for _, start := range []string{StatusUnresolved, StatusInProgress, StatusResolved} {
		s := start
		for i := 0; i < 3; i++ {
			s = NextStatus(s)
		}
		assert.Equal(t, start, s)
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusResolved, NormalizeStatus(StatusResolved))
	assert.Equal(t, StatusUnresolved, NormalizeStatus(""))
	assert.Equal(t, StatusUnresolved, NormalizeStatus("resolved"))
	assert.Equal(t, StatusUnresolved, NormalizeStatus("garbage"))
}

func TestUpvoterSet(t *testing.T) {
	var r IssueReport
	assert.Empty(t, r.Upvoters())

	a, b := uuid.New(), uuid.New()
	r.SetUpvoters([]uuid.UUID{a, b})
	assert.Equal(t, []uuid.UUID{a, b}, r.Upvoters())
	assert.True(t, r.HasUpvoted(a))
	assert.False(t, r.HasUpvoted(uuid.New()))

	r.SetUpvoters(nil)
	assert.Empty(t, r.Upvoters())
}

func TestToggleUpvoteInvolution(t *testing.T) {
	other := uuid.New()
	var r IssueReport
	r.SetUpvoters([]uuid.UUID{other})
	r.UpvoteCount = 1

	originalIDs := append([]byte(nil), r.UpvoterIDs...)
	user := uuid.New()

	assert.True(t, r.ToggleUpvote(user))
	assert.Equal(t, 2, r.UpvoteCount)
	assert.True(t, r.HasUpvoted(user))

	// Toggling again restores both fields to their original values.
	assert.False(t, r.ToggleUpvote(user))
	assert.Equal(t, 1, r.UpvoteCount)
	assert.False(t, r.HasUpvoted(user))
	assert.Equal(t, originalIDs, []byte(r.UpvoterIDs))
	assert.True(t, r.HasUpvoted(other))
}

func TestToggleUpvoteCountDerivesFromSet(t *testing.T) {
	var r IssueReport
	r.SetUpvoters(nil)

	a, b := uuid.New(), uuid.New()
	r.ToggleUpvote(a)
	r.ToggleUpvote(b)
	assert.Equal(t, 2, r.UpvoteCount)
	assert.Len(t, r.Upvoters(), 2)

	r.ToggleUpvote(a)
	assert.Equal(t, 1, r.UpvoteCount)
	assert.Equal(t, []uuid.UUID{b}, r.Upvoters())
}

func TestUpvotersCorruptColumn(t *testing.T) {
	r := IssueReport{UpvoterIDs: []byte("{not json")}
	assert.Empty(t, r.Upvoters())
}

func TestImages(t *testing.T) {
	var r IssueReport
	assert.Empty(t, r.Images())

	r.SetImages([]string{"a.jpg", "b.jpg"})
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, r.Images())
}
