package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileEvent mirrors ReportEvent for user profile records.
type ProfileEvent struct {
	Type    EventType
	Profile models.UserProfile
}

// ProfileStore is a live view of the user_profiles collection with the same
// contract as ReportStore, plus a point write used by the gamification engine
// to persist freshly computed experience points.
type ProfileStore struct {
	db  *gorm.DB
	dsn string

	fetchOne func(uuid.UUID) (models.UserProfile, error)
	fetchAll func() ([]models.UserProfile, error)

	mu    sync.RWMutex
	cache map[uuid.UUID]models.UserProfile

	subMu     sync.RWMutex
	subs      []func(ProfileEvent)
	stateSubs []func(error)

	cancel context.CancelFunc
}

func NewProfileStore(db *gorm.DB, dsn string) *ProfileStore {
	s := &ProfileStore{
		db:    db,
		dsn:   dsn,
		cache: make(map[uuid.UUID]models.UserProfile),
	}
	s.fetchOne = func(id uuid.UUID) (models.UserProfile, error) {
		var profile models.UserProfile
		err := s.db.First(&profile, "id = ?", id).Error
		return profile, err
	}
	s.fetchAll = func() ([]models.UserProfile, error) {
		var profiles []models.UserProfile
		err := s.db.Find(&profiles).Error
		return profiles, err
	}
	return s
}

// Subscribe registers a callback invoked for every add/update/remove.
// Must be called before Open.
func (s *ProfileStore) Subscribe(fn func(ProfileEvent)) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

// OnStateChange registers a callback invoked with a non-nil error when the
// subscription drops and with nil once it is healthy again.
func (s *ProfileStore) OnStateChange(fn func(error)) {
	s.subMu.Lock()
	s.stateSubs = append(s.stateSubs, fn)
	s.subMu.Unlock()
}

// Open loads the initial snapshot and starts the change feed listener.
func (s *ProfileStore) Open(ctx context.Context) error {
	if err := s.reload(); err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	listener := NewListener(s.dsn, "user_profiles_changes",
		s.handleChange,
		func() {
			if err := s.reload(); err != nil {
				s.notifyState(err)
				return
			}
			s.notifyState(nil)
		},
		s.notifyState,
	)
	go listener.Run(ctx)
	return nil
}

func (s *ProfileStore) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Profiles returns a copy of the last known-good profile set.
func (s *ProfileStore) Profiles() []models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserProfile, 0, len(s.cache))
	for _, p := range s.cache {
		out = append(out, p)
	}
	return out
}

// SetExperiencePoints merges a freshly computed experience-points value into
// one profile record. UpdateColumn leaves updated_at alone so recomputed
// values do not masquerade as profile edits.
func (s *ProfileStore) SetExperiencePoints(ctx context.Context, userID uuid.UUID, points int) error {
	err := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("id = ?", userID).
		UpdateColumn("experience_points", points).Error
	if err != nil {
		return fmt.Errorf("failed to persist experience points: %w", err)
	}
	return nil
}

func (s *ProfileStore) handleChange(change Change) {
	id, err := uuid.Parse(change.ID)
	if err != nil {
		return
	}

	if change.Op == opDelete {
		s.mu.Lock()
		prev, ok := s.cache[id]
		delete(s.cache, id)
		s.mu.Unlock()
		if ok {
			s.emit(ProfileEvent{Type: EventRemove, Profile: prev})
		}
		return
	}

	profile, err := s.fetchOne(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.mu.Lock()
			prev, ok := s.cache[id]
			delete(s.cache, id)
			s.mu.Unlock()
			if ok {
				s.emit(ProfileEvent{Type: EventRemove, Profile: prev})
			}
			return
		}
		// The feed itself is still healthy, so no reconnect will reconcile
		// this miss for us: reload the cache instead of dropping the change.
		s.notifyState(err)
		if rerr := s.reload(); rerr == nil {
			s.notifyState(nil)
		}
		return
	}

	s.mu.Lock()
	_, existed := s.cache[id]
	s.cache[id] = profile
	s.mu.Unlock()

	if existed {
		s.emit(ProfileEvent{Type: EventUpdate, Profile: profile})
	} else {
		s.emit(ProfileEvent{Type: EventAdd, Profile: profile})
	}
}

func (s *ProfileStore) reload() error {
	profiles, err := s.fetchAll()
	if err != nil {
		return err
	}

	fresh := make(map[uuid.UUID]models.UserProfile, len(profiles))
	for _, p := range profiles {
		fresh[p.ID] = p
	}

	s.mu.Lock()
	old := s.cache
	s.cache = fresh
	s.mu.Unlock()

	for id, p := range fresh {
		prev, ok := old[id]
		if !ok {
			s.emit(ProfileEvent{Type: EventAdd, Profile: p})
		} else if prev != p {
			s.emit(ProfileEvent{Type: EventUpdate, Profile: p})
		}
	}
	for id, prev := range old {
		if _, ok := fresh[id]; !ok {
			s.emit(ProfileEvent{Type: EventRemove, Profile: prev})
		}
	}
	return nil
}

func (s *ProfileStore) emit(ev ProfileEvent) {
	s.subMu.RLock()
	subs := s.subs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (s *ProfileStore) notifyState(err error) {
	s.subMu.RLock()
	subs := s.stateSubs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(err)
	}
}
