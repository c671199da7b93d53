package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errUpstream = errors.New("upstream 503")
	errNotFound = errors.New("404")
)

type transitions struct {
	mu   sync.Mutex
	seen []string
}

func (t *transitions) record(from, to State) {
	t.mu.Lock()
	t.seen = append(t.seen, string(from)+"->"+string(to))
	t.mu.Unlock()
}

func newTestBreaker(settings Settings, now *time.Time) *Breaker {
	b := NewBreaker(settings)
	b.now = func() time.Time { return *now }
	return b
}

func TestBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	changes := &transitions{}
	b := newTestBreaker(Settings{Threshold: 2, Cooldown: 5 * time.Second, Probes: 1, OnChange: changes.record}, &now)

	assert.Equal(t, errUpstream, b.Execute(func() error { return errUpstream }))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, errUpstream, b.Execute(func() error { return errUpstream }))
	assert.Equal(t, StateOpen, b.State())

	calls := 0
	err := b.Execute(func() error { calls++; return nil })
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Zero(t, calls)

	now = now.Add(6 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Allow())
	assert.True(t, errors.Is(b.Allow(), ErrCircuitOpen), "only one probe at a time")

	b.Done(nil)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, changes.seen)
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	b := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Second}, &now)

	b.Done(errUpstream)
	require.Equal(t, StateOpen, b.State())

	now = now.Add(2 * time.Second)
	require.NoError(t, b.Allow())
	b.Done(errUpstream)

	assert.Equal(t, StateOpen, b.State())
	assert.True(t, errors.Is(b.Allow(), ErrCircuitOpen))
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	b := newTestBreaker(Settings{Threshold: 2, Cooldown: time.Second}, &now)

	b.Done(errUpstream)
	b.Done(nil)
	b.Done(errUpstream)

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_ErrorsThatDoNotTripCountAsSuccess(t *testing.T) {
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	b := newTestBreaker(Settings{
		Threshold: 2,
		Cooldown:  time.Second,
		Trips:     func(err error) bool { return !errors.Is(err, errNotFound) },
	}, &now)

	b.Done(errUpstream)
	b.Done(errNotFound)
	b.Done(errUpstream)
	assert.Equal(t, StateClosed, b.State())

	b.Done(errUpstream)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_ZeroSettingsUseDefaults(t *testing.T) {
	b := NewBreaker(Settings{})

	assert.Equal(t, 1, b.settings.Threshold)
	assert.Equal(t, 15*time.Second, b.settings.Cooldown)
	assert.Equal(t, 1, b.settings.Probes)
}
