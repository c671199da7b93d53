package domain

import "time"

// SyncStats holds statistics about a sync pass.
type SyncStats struct {
	RunID           string
	EventID         int64
	FetchedRows     int
	Results         int
	Duplicates      int
	BracketsUsed    int
	BracketFailures int
	Warnings        []Warning
	Duration        time.Duration
}

// ImportStats holds statistics about an event catalog import.
type ImportStats struct {
	Events       int
	Races        int
	RaceFailures int
	Duration     time.Duration
}

type SyncState struct {
	EventID      int64     `db:"event_id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	SyncVersion  int64     `db:"sync_version"`
	TotalSynced  int64     `db:"total_synced"`
}

type SyncOptions struct {
	Force bool
	// Epoch scopes the pass to a selection; zero means unscoped.
	Epoch uint64
}

type ResultSource string

const (
	SourceCache ResultSource = "cache"
	SourceFresh ResultSource = "fresh"
	SourceStale ResultSource = "stale"
)

type SyncResult struct {
	EventID int64
	Results []CanonicalResult
	Source  ResultSource
	Stats   *SyncStats
}

type SyncPhase string

const (
	PhaseIdle         SyncPhase = "idle"
	PhaseLoadingCache SyncPhase = "loading_cache"
	PhaseCacheHit     SyncPhase = "cache_hit"
	PhaseCacheMiss    SyncPhase = "cache_miss"
	PhaseDeciding     SyncPhase = "deciding"
	PhaseSyncing      SyncPhase = "syncing"
	PhaseMerged       SyncPhase = "merged"
)

type LivePhase string

const (
	LiveActiveWindow    LivePhase = "active_window"
	LiveRaceDayFallback LivePhase = "race_day_fallback"
	LiveNotLive         LivePhase = "not_live"
)

// LiveState is the live classification of an event and the poll cadence it implies.
type LiveState struct {
	Phase    LivePhase
	Interval time.Duration
}

func (s LiveState) IsLive() bool {
	return s.Phase != LiveNotLive
}
