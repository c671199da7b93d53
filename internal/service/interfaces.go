package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"results_sync/internal/domain"
	"results_sync/internal/ranking"
)

type TimingClient interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListRaces(ctx context.Context, eventID int64) ([]domain.Race, error)
	FetchAllResults(ctx context.Context, eventID int64) ([]domain.RawResultRow, error)
}

type RankResolver interface {
	ResolveRankLookups(ctx context.Context, eventID int64) (*ranking.Resolution, error)
}

type ResultStore interface {
	LoadCached(ctx context.Context, eventID int64) ([]domain.CacheRecord, error)
	Upsert(ctx context.Context, eventID int64, results []domain.CanonicalResult) error
}

type SyncStateStore interface {
	Get(ctx context.Context, eventID int64) (*domain.SyncState, error)
	TouchLastSynced(ctx context.Context, eventID int64, syncedAt time.Time, total int) error
	BumpSyncVersion(ctx context.Context, eventID int64) (int64, error)
}

type EventStore interface {
	UpsertEvent(ctx context.Context, event *domain.Event) error
	ReplaceRaces(ctx context.Context, eventID int64, races []domain.Race) error
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
}

// RaceCatalog serves race names stored by the catalog import.
type RaceCatalog interface {
	RaceNames(ctx context.Context, eventID int64) (map[int64]string, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, result *domain.SyncResult) error
	Close() error
}

// SyncRecorder receives sync pass outcomes for metrics.
type SyncRecorder interface {
	ObserveSync(source domain.ResultSource, outcome string, elapsed time.Duration)
	SetCachedResults(eventID int64, n int)
	AddBracketFailures(n int)
}
