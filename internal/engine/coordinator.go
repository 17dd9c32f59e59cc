package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/store"
	"github.com/google/uuid"
)

// State is the coordinator lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateSubscribing
	StateReady
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscribing:
		return "subscribing"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	}
	return "unknown"
}

// ReportSource is the report store adapter capability the coordinator needs.
type ReportSource interface {
	Open(ctx context.Context) error
	Subscribe(fn func(store.ReportEvent))
	OnStateChange(fn func(error))
	Reports() []models.IssueReport
	Close()
}

// ProfileSource is the profile store adapter capability, including the point
// write the gamification engine uses.
type ProfileSource interface {
	Open(ctx context.Context) error
	Subscribe(fn func(store.ProfileEvent))
	OnStateChange(fn func(error))
	Profiles() []models.UserProfile
	SetExperiencePoints(ctx context.Context, userID uuid.UUID, points int) error
	Close()
}

// Coordinator owns both store adapters, serializes recomputation and
// publishes one immutable snapshot per pass to all registered observers.
// Deltas arriving during a pass coalesce into exactly one follow-up pass
// that reads the latest available state.
type Coordinator struct {
	reports    ReportSource
	profiles   ProfileSource
	classifier Classifier
	gamify     *GamificationEngine

	state atomic.Int32
	dirty chan struct{}

	healthMu     sync.Mutex
	reportsDown  bool
	profilesDown bool

	obsMu     sync.Mutex
	observers map[uint64]chan *Snapshot
	nextObsID uint64

	latest atomic.Pointer[Snapshot]
	seq    atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
}

func NewCoordinator(reports ReportSource, profiles ProfileSource, classifier Classifier, gamify *GamificationEngine) *Coordinator {
	return &Coordinator{
		reports:    reports,
		profiles:   profiles,
		classifier: classifier,
		gamify:     gamify,
		dirty:      make(chan struct{}, 1),
		observers:  make(map[uint64]chan *Snapshot),
		done:       make(chan struct{}),
	}
}

// Start opens both adapters, computes the initial snapshot and begins the
// single-flight recomputation loop.
func (c *Coordinator) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.setState(StateSubscribing)

	c.reports.Subscribe(func(store.ReportEvent) { c.markDirty() })
	c.profiles.Subscribe(func(store.ProfileEvent) { c.markDirty() })
	c.reports.OnStateChange(func(err error) { c.handleAdapterState(&c.reportsDown, err) })
	c.profiles.OnStateChange(func(err error) { c.handleAdapterState(&c.profilesDown, err) })

	if err := c.reports.Open(ctx); err != nil {
		c.setState(StateIdle)
		return fmt.Errorf("failed to open report store: %w", err)
	}
	if err := c.profiles.Open(ctx); err != nil {
		c.reports.Close()
		c.setState(StateIdle)
		return fmt.Errorf("failed to open profile store: %w", err)
	}

	c.setState(StateReady)
	c.markDirty()
	go c.run(ctx)
	return nil
}

// Stop cancels the recomputation loop and closes both adapters.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
	c.reports.Close()
	c.profiles.Close()
	c.setState(StateIdle)
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Latest returns the most recently published snapshot, or nil before the
// first pass completes. During a degraded period this keeps serving the last
// known-good snapshot.
func (c *Coordinator) Latest() *Snapshot {
	return c.latest.Load()
}

// SubscribeObserver registers an observer. The channel is buffered one deep
// with latest-wins semantics: a slow observer only ever misses intermediate
// snapshots, never sees a torn one.
func (c *Coordinator) SubscribeObserver() (uint64, <-chan *Snapshot) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.nextObsID++
	id := c.nextObsID
	ch := make(chan *Snapshot, 1)
	c.observers[id] = ch
	if snap := c.latest.Load(); snap != nil {
		ch <- snap
	}
	return id, ch
}

// UnsubscribeObserver stops delivery to one observer immediately without
// affecting the others.
func (c *Coordinator) UnsubscribeObserver(id uint64) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	if ch, ok := c.observers[id]; ok {
		delete(c.observers, id)
		close(ch)
	}
}

func (c *Coordinator) markDirty() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// handleAdapterState tracks each adapter's health separately: one adapter
// reporting healthy must not mask the other still being down.
func (c *Coordinator) handleAdapterState(down *bool, err error) {
	c.healthMu.Lock()
	*down = err != nil
	anyDown := c.reportsDown || c.profilesDown
	c.healthMu.Unlock()

	if anyDown {
		c.setState(StateDegraded)
		return
	}
	c.setState(StateReady)
	c.markDirty()
}

func (c *Coordinator) setState(s State) {
	old := State(c.state.Swap(int32(s)))
	if old != s {
		slog.Info("coordinator state changed", "from", old.String(), "to", s.String())
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.dirty:
			c.recompute(ctx)
		}
	}
}

// recompute runs one full pass over the latest adapter state. At most one
// pass executes at a time; this is the only goroutine that publishes.
func (c *Coordinator) recompute(ctx context.Context) {
	started := time.Now()

	reports := c.reports.Reports()
	profiles := c.profiles.Profiles()

	users, leaderboard := c.gamify.Compute(ctx, reports, profiles)

	snap := &Snapshot{
		Seq:         c.seq.Add(1),
		ComputedAt:  started,
		Groups:      BuildGroups(reports),
		Density:     c.classifier.Classify(reports),
		Users:       users,
		Leaderboard: leaderboard,
	}

	c.latest.Store(snap)
	c.publish(snap)

	slog.Debug("recomputation pass complete",
		"seq", snap.Seq,
		"reports", len(reports),
		"groups", len(snap.Groups),
		"users", len(users),
		"latency_ms", float64(time.Since(started).Milliseconds()))
}

func (c *Coordinator) publish(snap *Snapshot) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	for _, ch := range c.observers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
