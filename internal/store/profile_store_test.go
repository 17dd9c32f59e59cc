package store

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func recordedProfileStore(rows map[uuid.UUID]models.UserProfile) (*ProfileStore, *[]ProfileEvent, *[]error) {
	s := NewProfileStore(nil, "")
	s.fetchOne = func(id uuid.UUID) (models.UserProfile, error) {
		p, ok := rows[id]
		if !ok {
			return models.UserProfile{}, gorm.ErrRecordNotFound
		}
		return p, nil
	}
	s.fetchAll = func() ([]models.UserProfile, error) {
		out := make([]models.UserProfile, 0, len(rows))
		for _, p := range rows {
			out = append(out, p)
		}
		return out, nil
	}

	var events []ProfileEvent
	var states []error
	s.Subscribe(func(ev ProfileEvent) { events = append(events, ev) })
	s.OnStateChange(func(err error) { states = append(states, err) })
	return s, &events, &states
}

func TestProfileStoreFetchFailureReconcilesViaReload(t *testing.T) {
	profile := models.UserProfile{ID: uuid.New(), Username: "alice"}
	rows := map[uuid.UUID]models.UserProfile{profile.ID: profile}
	s, events, states := recordedProfileStore(rows)
	s.fetchOne = func(uuid.UUID) (models.UserProfile, error) {
		return models.UserProfile{}, errors.New("connection reset")
	}

	s.handleChange(Change{Op: opInsert, ID: profile.ID.String()})

	require.Len(t, *states, 2)
	assert.Error(t, (*states)[0])
	assert.NoError(t, (*states)[1])
	require.Len(t, *events, 1)
	assert.Equal(t, EventAdd, (*events)[0].Type)
	assert.Len(t, s.Profiles(), 1)
}

func TestProfileStoreReloadDiffsByValue(t *testing.T) {
	profile := models.UserProfile{ID: uuid.New(), Username: "alice", ExperiencePoints: 5}
	rows := map[uuid.UUID]models.UserProfile{profile.ID: profile}
	s, events, _ := recordedProfileStore(rows)

	require.NoError(t, s.reload())
	require.Len(t, *events, 1)

	// Unchanged rows replay nothing.
	*events = nil
	require.NoError(t, s.reload())
	assert.Empty(t, *events)

	// A point write changes the value and surfaces as an update.
	profile.ExperiencePoints = 10
	rows[profile.ID] = profile
	require.NoError(t, s.reload())
	require.Len(t, *events, 1)
	assert.Equal(t, EventUpdate, (*events)[0].Type)
	assert.Equal(t, 10, (*events)[0].Profile.ExperiencePoints)
}
