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

// EventType classifies a change delivered by a store adapter.
type EventType int

const (
	EventAdd EventType = iota
	EventUpdate
	EventRemove
)

// ReportEvent carries the full current record, not a partial diff. For
// EventRemove the record holds the last known state of the deleted report.
type ReportEvent struct {
	Type   EventType
	Report models.IssueReport
}

// ReportStore is a live view of the issue_reports collection. Open loads the
// initial snapshot and keeps the in-memory cache current via the change feed.
// During a subscription outage consumers keep observing the last known-good
// state; after resubscription the cache is reloaded and the differences are
// replayed as synthetic events.
type ReportStore struct {
	db  *gorm.DB
	dsn string

	fetchOne func(uuid.UUID) (models.IssueReport, error)
	fetchAll func() ([]models.IssueReport, error)

	mu    sync.RWMutex
	cache map[uuid.UUID]models.IssueReport

	subMu     sync.RWMutex
	subs      []func(ReportEvent)
	stateSubs []func(error)

	cancel context.CancelFunc
}

func NewReportStore(db *gorm.DB, dsn string) *ReportStore {
	s := &ReportStore{
		db:    db,
		dsn:   dsn,
		cache: make(map[uuid.UUID]models.IssueReport),
	}
	s.fetchOne = func(id uuid.UUID) (models.IssueReport, error) {
		var report models.IssueReport
		err := s.db.First(&report, "id = ?", id).Error
		return report, err
	}
	s.fetchAll = func() ([]models.IssueReport, error) {
		var reports []models.IssueReport
		err := s.db.Find(&reports).Error
		return reports, err
	}
	return s
}

// Subscribe registers a callback invoked for every add/update/remove.
// Must be called before Open.
func (s *ReportStore) Subscribe(fn func(ReportEvent)) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

// OnStateChange registers a callback invoked with a non-nil error when the
// subscription drops and with nil once it is healthy again.
func (s *ReportStore) OnStateChange(fn func(error)) {
	s.subMu.Lock()
	s.stateSubs = append(s.stateSubs, fn)
	s.subMu.Unlock()
}

// Open loads the initial snapshot and starts the change feed listener.
func (s *ReportStore) Open(ctx context.Context) error {
	if err := s.reload(); err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	listener := NewListener(s.dsn, "issue_reports_changes",
		s.handleChange,
		func() {
			// Reconcile anything missed during the outage.
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

func (s *ReportStore) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Reports returns a copy of the last known-good report set.
func (s *ReportStore) Reports() []models.IssueReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.IssueReport, 0, len(s.cache))
	for _, r := range s.cache {
		out = append(out, r)
	}
	return out
}

func (s *ReportStore) handleChange(change Change) {
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
			s.emit(ReportEvent{Type: EventRemove, Report: prev})
		}
		return
	}

	report, err := s.fetchOne(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted between notification and fetch: treat as already absent.
			s.mu.Lock()
			prev, ok := s.cache[id]
			delete(s.cache, id)
			s.mu.Unlock()
			if ok {
				s.emit(ReportEvent{Type: EventRemove, Report: prev})
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
	s.cache[id] = report
	s.mu.Unlock()

	if existed {
		s.emit(ReportEvent{Type: EventUpdate, Report: report})
	} else {
		s.emit(ReportEvent{Type: EventAdd, Report: report})
	}
}

// reload replaces the cache with the database state and replays the
// differences as events.
func (s *ReportStore) reload() error {
	reports, err := s.fetchAll()
	if err != nil {
		return err
	}

	fresh := make(map[uuid.UUID]models.IssueReport, len(reports))
	for _, r := range reports {
		fresh[r.ID] = r
	}

	s.mu.Lock()
	old := s.cache
	s.cache = fresh
	s.mu.Unlock()

	for id, r := range fresh {
		prev, ok := old[id]
		if !ok {
			s.emit(ReportEvent{Type: EventAdd, Report: r})
		} else if !r.UpdatedAt.Equal(prev.UpdatedAt) {
			s.emit(ReportEvent{Type: EventUpdate, Report: r})
		}
	}
	for id, prev := range old {
		if _, ok := fresh[id]; !ok {
			s.emit(ReportEvent{Type: EventRemove, Report: prev})
		}
	}
	return nil
}

func (s *ReportStore) emit(ev ReportEvent) {
	s.subMu.RLock()
	subs := s.subs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (s *ReportStore) notifyState(err error) {
	s.subMu.RLock()
	subs := s.stateSubs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(err)
	}
}
