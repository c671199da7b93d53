package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
)

type syncCall struct {
	eventID int64
	opts    domain.SyncOptions
}

type fakeSyncer struct {
	epoch atomic.Uint64
	err   error

	mu    sync.Mutex
	calls []syncCall
}

func (f *fakeSyncer) Select(_ int64) uint64 {
	return f.epoch.Add(1)
}

func (f *fakeSyncer) SyncEvent(_ context.Context, eventID int64, opts domain.SyncOptions) (*domain.SyncResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, syncCall{eventID: eventID, opts: opts})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SyncResult{EventID: eventID, Source: domain.SourceFresh}, nil
}

func (f *fakeSyncer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSyncer) callsFor(eventID int64) []syncCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []syncCall
	for _, c := range f.calls {
		if c.eventID == eventID {
			out = append(out, c)
		}
	}
	return out
}

type fakeEvents map[int64]*domain.Event

func (f fakeEvents) GetEvent(_ context.Context, id int64) (*domain.Event, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

type slowEvents struct {
	fakeEvents
	delay time.Duration
}

func (s slowEvents) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	time.Sleep(s.delay)
	return s.fakeEvents.GetEvent(ctx, id)
}

var fastIntervals = Intervals{Active: 10 * time.Millisecond, Fallback: 20 * time.Millisecond}

func newTestScheduler(syncer Syncer, events fakeEvents, clock *atomic.Pointer[time.Time]) *Scheduler {
	s := NewScheduler(syncer, events, fastIntervals, time.UTC, logging.NewNop())
	s.now = func() time.Time { return *clock.Load() }
	return s
}

func liveEvents(now time.Time) fakeEvents {
	end := now.Add(time.Hour)
	return fakeEvents{
		1: {ID: 1, Name: "Spring 10K", StartAt: now.Add(-time.Hour), EndAt: &end},
		2: {ID: 2, Name: "Harbor Half", StartAt: now.Add(-time.Hour)},
		3: {ID: 3, Name: "Last Year", StartAt: now.AddDate(-1, 0, 0)},
	}
}

func newClock(t time.Time) *atomic.Pointer[time.Time] {
	clock := &atomic.Pointer[time.Time]{}
	clock.Store(&t)
	return clock
}

func TestScheduler_WatchForcesSyncEveryTick(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{}
	sched := newTestScheduler(syncer, liveEvents(now), newClock(now))
	defer sched.Close()

	state, err := sched.Watch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.LiveActiveWindow, state.Phase)
	assert.Equal(t, int64(1), sched.Watching())

	require.Eventually(t, func() bool {
		return len(syncer.callsFor(1)) >= 3
	}, time.Second, 5*time.Millisecond)

	for _, c := range syncer.callsFor(1) {
		assert.True(t, c.opts.Force)
		assert.Equal(t, uint64(1), c.opts.Epoch)
	}
}

func TestScheduler_NotLiveDoesNotPoll(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{}
	sched := newTestScheduler(syncer, liveEvents(now), newClock(now))

	state, err := sched.Watch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.LiveNotLive, state.Phase)

	select {
	case <-sched.Done():
	default:
		t.Fatal("expected no active watch")
	}

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, syncer.callsFor(3))
	assert.Equal(t, uint64(1), syncer.epoch.Load())
}

func TestScheduler_SwitchingEventCancelsPreviousTimer(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{}
	sched := newTestScheduler(syncer, liveEvents(now), newClock(now))
	defer sched.Close()

	_, err := sched.Watch(context.Background(), 1)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(syncer.callsFor(1)) >= 1
	}, time.Second, 5*time.Millisecond)

	state, err := sched.Watch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.LiveRaceDayFallback, state.Phase)
	assert.Equal(t, int64(2), sched.Watching())

	before := len(syncer.callsFor(1))
	require.Eventually(t, func() bool {
		return len(syncer.callsFor(2)) >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, before, len(syncer.callsFor(1)))

	for _, c := range syncer.callsFor(2) {
		assert.Equal(t, uint64(2), c.opts.Epoch)
	}
}

func TestScheduler_StopClearsTimer(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{}
	sched := newTestScheduler(syncer, liveEvents(now), newClock(now))

	done := func() <-chan struct{} {
		_, err := sched.Watch(context.Background(), 1)
		require.NoError(t, err)
		return sched.Done()
	}()
	require.Eventually(t, func() bool {
		return len(syncer.callsFor(1)) >= 1
	}, time.Second, 5*time.Millisecond)

	sched.Stop()
	<-done
	after := len(syncer.callsFor(1))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, len(syncer.callsFor(1)))
	assert.Zero(t, sched.Watching())
}

func TestScheduler_EndsWhenEventIsOver(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	clock := newClock(now)
	syncer := &fakeSyncer{}
	sched := newTestScheduler(syncer, liveEvents(now), clock)
	defer sched.Close()

	_, err := sched.Watch(context.Background(), 1)
	require.NoError(t, err)
	done := sched.Done()

	require.Eventually(t, func() bool {
		return len(syncer.callsFor(1)) >= 1
	}, time.Second, 5*time.Millisecond)

	later := now.Add(2 * time.Hour)
	clock.Store(&later)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not end after the event finished")
	}
}

func TestScheduler_SupersededSyncEndsWatch(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{err: domain.ErrSuperseded}
	sched := newTestScheduler(syncer, liveEvents(now), newClock(now))
	defer sched.Close()

	_, err := sched.Watch(context.Background(), 1)
	require.NoError(t, err)

	select {
	case <-sched.Done():
	case <-time.After(time.Second):
		t.Fatal("watch did not end after being superseded")
	}
	assert.Len(t, syncer.callsFor(1), 1)
}

func TestScheduler_SyncErrorKeepsPolling(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{err: &domain.SyncError{EventID: 1, Stage: domain.PhaseSyncing, Err: domain.ErrCacheWrite}}
	sched := newTestScheduler(syncer, liveEvents(now), newClock(now))
	defer sched.Close()

	_, err := sched.Watch(context.Background(), 1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(syncer.callsFor(1)) >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_ParentCancelEndsWatch(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sched := newTestScheduler(&fakeSyncer{}, liveEvents(now), newClock(now))
	defer sched.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := sched.Watch(ctx, 1)
	require.NoError(t, err)
	done := sched.Done()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not end after cancellation")
	}
}

func TestScheduler_UnknownEvent(t *testing.T) {
	sched := newTestScheduler(&fakeSyncer{}, fakeEvents{}, newClock(time.Now()))

	state, err := sched.Watch(context.Background(), 42)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, state.IsLive())
}

func TestScheduler_ConcurrentWatchesLeaveNoOrphanTimer(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{}
	events := slowEvents{fakeEvents: liveEvents(now), delay: 15 * time.Millisecond}
	sched := NewScheduler(syncer, events, fastIntervals, time.UTC, logging.NewNop())
	sched.now = func() time.Time { return now }

	var wg sync.WaitGroup
	for _, id := range []int64{1, 2} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sched.Watch(context.Background(), id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return syncer.total() >= 2
	}, time.Second, 5*time.Millisecond)

	sched.Stop()
	assert.Zero(t, sched.Watching())

	after := syncer.total()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, after, syncer.total())
}

func TestScheduler_StopDuringWatchCancelsIt(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{}
	events := slowEvents{fakeEvents: liveEvents(now), delay: 30 * time.Millisecond}
	sched := NewScheduler(syncer, events, fastIntervals, time.UTC, logging.NewNop())
	sched.now = func() time.Time { return now }

	watched := make(chan struct{})
	go func() {
		defer close(watched)
		_, err := sched.Watch(context.Background(), 1)
		assert.NoError(t, err)
	}()

	time.Sleep(10 * time.Millisecond)
	sched.Stop()
	<-watched
	sched.Stop()

	after := syncer.total()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, after, syncer.total())
	assert.Zero(t, sched.Watching())
}
