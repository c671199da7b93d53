package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Settings configures a Breaker. Zero values fall back to one failure, a 15s
// cooldown and a single probe.
type Settings struct {
	// Threshold is the number of consecutive tripping failures that opens the circuit.
	Threshold int
	// Cooldown is how long the circuit stays open before letting probes through.
	Cooldown time.Duration
	// Probes is how many half-open calls may run at once. All of them must
	// succeed to close the circuit again.
	Probes int
	// Trips decides whether an error counts against the upstream. Errors it
	// rejects are recorded as successes. Nil means every error trips.
	Trips func(error) bool
	// OnChange is called outside the lock after every state transition.
	OnChange func(from, to State)
}

// Breaker guards calls to a flaky upstream.
type Breaker struct {
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  int
	passed   int
}

func NewBreaker(settings Settings) *Breaker {
	if settings.Threshold < 1 {
		settings.Threshold = 1
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 15 * time.Second
	}
	if settings.Probes < 1 {
		settings.Probes = 1
	}
	return &Breaker{settings: settings, now: time.Now, state: StateClosed}
}

// Execute runs fn when the circuit lets it through and records its outcome.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	b.Done(err)
	return err
}

// Allow reserves a call. Every nil return must be paired with Done.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	from := b.state
	err := b.admit()
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return err
}

// Done records the outcome of a call admitted by Allow.
func (b *Breaker) Done(err error) {
	b.mu.Lock()
	from := b.state
	if err != nil && b.trips(err) {
		b.fail()
	} else {
		b.succeed()
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// State reports the current state. An open circuit whose cooldown has passed
// reads as half-open even before the next call moves it there.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.cooled() {
		return StateHalfOpen
	}
	return b.state
}

func (b *Breaker) admit() error {
	switch b.state {
	case StateOpen:
		if !b.cooled() {
			return ErrCircuitOpen
		}
		b.state, b.probing, b.passed = StateHalfOpen, 0, 0
		fallthrough
	case StateHalfOpen:
		if b.probing >= b.settings.Probes {
			return ErrCircuitOpen
		}
		b.probing++
	}
	return nil
}

func (b *Breaker) fail() {
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.settings.Threshold {
			b.trip()
		}
	case StateHalfOpen:
		b.trip()
	case StateOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) succeed() {
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.probing = max(b.probing-1, 0)
		b.passed++
		if b.passed >= b.settings.Probes && b.probing == 0 {
			b.state, b.failures, b.passed = StateClosed, 0, 0
		}
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.probing, b.passed = 0, 0
}

func (b *Breaker) cooled() bool {
	return b.now().Sub(b.openedAt) >= b.settings.Cooldown
}

func (b *Breaker) trips(err error) bool {
	if b.settings.Trips == nil {
		return true
	}
	return b.settings.Trips(err)
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.settings.OnChange != nil {
		b.settings.OnChange(from, to)
	}
}
