package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Select(eventID int64) uint64
	SyncEvent(ctx context.Context, eventID int64, opts domain.SyncOptions) (*domain.SyncResult, error)
}

type EventSource interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
}

// Scheduler polls one watched event while it is live. Watching another event,
// Stop and Close all cancel the current timer before returning.
type Scheduler struct {
	syncer    Syncer
	events    EventSource
	intervals Intervals
	loc       *time.Location
	logger    *logging.Logger
	now       func() time.Time

	// watchMu serialises Watch and Stop so no watch is ever installed
	// without the previous one being cancelled first.
	watchMu sync.Mutex

	mu      sync.Mutex
	eventID int64
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(syncer Syncer, events EventSource, intervals Intervals, loc *time.Location, logger *logging.Logger) *Scheduler {
	if intervals.Active <= 0 {
		intervals.Active = DefaultActiveInterval
	}
	if intervals.Fallback <= 0 {
		intervals.Fallback = DefaultFallbackInterval
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		syncer:    syncer,
		events:    events,
		intervals: intervals,
		loc:       loc,
		logger:    logger.With("component", "scheduler"),
		now:       time.Now,
	}
}

// IsLive classifies the event at the current time with the configured cadences.
func (s *Scheduler) IsLive(event *domain.Event) domain.LiveState {
	return s.intervals.Classify(event, s.now(), s.loc)
}

// Watch makes eventID the watched event. Any previous watch is stopped first.
// While the event is live every tick forces a fresh sync; polling ends on its
// own once the event is no longer live.
func (s *Scheduler) Watch(ctx context.Context, eventID int64) (domain.LiveState, error) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	s.stop()

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return domain.LiveState{Phase: domain.LiveNotLive}, fmt.Errorf("get event %d: %w", eventID, err)
	}

	epoch := s.syncer.Select(eventID)
	state := s.IsLive(event)
	if !state.IsLive() {
		s.logger.InfoContext(ctx, "event not live, serving cache", "event_id", eventID)
		return state, nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.eventID = eventID
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "watching live event",
		"event_id", eventID,
		"phase", state.Phase,
		"interval", state.Interval,
	)

	go s.loop(watchCtx, event, epoch, state, done)

	return state, nil
}

// Done is closed when the current watch ends. Without a watch it is already closed.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.done
}

// Watching returns the watched event id, or zero.
func (s *Scheduler) Watching() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventID
}

// Stop cancels the current watch and waits for its loop to exit.
func (s *Scheduler) Stop() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	s.stop()
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done, s.eventID = nil, nil, 0
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) Close() error {
	s.Stop()
	return nil
}

func (s *Scheduler) loop(ctx context.Context, event *domain.Event, epoch uint64, state domain.LiveState, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(state.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", "event_id", event.ID)
			return
		case <-timer.C:
			if ctx.Err() != nil {
				return
			}
			if !s.runSync(ctx, event.ID, epoch) {
				return
			}

			next := s.IsLive(event)
			if !next.IsLive() {
				s.logger.Info("event no longer live", "event_id", event.ID)
				return
			}
			if next.Phase != state.Phase {
				s.logger.Info("live phase changed", "event_id", event.ID, "phase", next.Phase, "interval", next.Interval)
			}
			state = next
			timer.Reset(state.Interval)
		}
	}
}

// runSync reports whether polling should continue.
func (s *Scheduler) runSync(ctx context.Context, eventID int64, epoch uint64) bool {
	result, err := s.syncer.SyncEvent(ctx, eventID, domain.SyncOptions{Force: true, Epoch: epoch})
	switch {
	case ctx.Err() != nil:
		return false
	case errors.Is(err, domain.ErrSuperseded):
		s.logger.Info("watch superseded", "event_id", eventID)
		return false
	case err != nil:
		s.logger.Error("live sync failed", "event_id", eventID, "error", err)
	default:
		s.logger.Debug("live sync done", "event_id", eventID, "results", len(result.Results))
	}
	return ctx.Err() == nil
}
