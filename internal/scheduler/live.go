package scheduler

import (
	"time"

	"results_sync/internal/domain"
)

const (
	DefaultActiveInterval   = 30 * time.Second
	DefaultFallbackInterval = 60 * time.Second
)

// Intervals are the poll cadences for the two live phases.
type Intervals struct {
	Active   time.Duration
	Fallback time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{Active: DefaultActiveInterval, Fallback: DefaultFallbackInterval}
}

// IsLive classifies the event with the default cadences. Calendar dates are
// compared in loc.
func IsLive(event *domain.Event, now time.Time, loc *time.Location) domain.LiveState {
	return DefaultIntervals().Classify(event, now, loc)
}

// Classify returns ActiveWindow when now falls inside a known start/end,
// RaceDayFallback when the end is unknown and now is on the start's calendar
// date, and NotLive otherwise.
func (iv Intervals) Classify(event *domain.Event, now time.Time, loc *time.Location) domain.LiveState {
	notLive := domain.LiveState{Phase: domain.LiveNotLive}
	if event == nil || event.StartAt.IsZero() {
		return notLive
	}
	if loc == nil {
		loc = time.Local
	}

	start := event.StartAt
	if event.EndAt != nil {
		if !now.Before(start) && !now.After(*event.EndAt) {
			return domain.LiveState{Phase: domain.LiveActiveWindow, Interval: iv.Active}
		}
		return notLive
	}

	if sameDate(start.In(loc), now.In(loc)) {
		return domain.LiveState{Phase: domain.LiveRaceDayFallback, Interval: iv.Fallback}
	}
	return notLive
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
