package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"results_sync/internal/config"
	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
	"results_sync/internal/ranking"
)

// SyncService keeps the cached results of each event fresh.
//
// For one event at most one pass runs at a time; concurrent callers join it.
// Every pass may carry the selection epoch it started under, and a pass whose
// epoch has been superseded by Select is discarded before it writes anything.
type SyncService struct {
	client    TimingClient
	resolver  RankResolver
	results   ResultStore
	syncState SyncStateStore
	txManager TransactionManager
	publisher Publisher
	metrics   SyncRecorder
	races     RaceCatalog
	logger    *logging.Logger
	config    config.SyncConfig
	now       func() time.Time

	flight singleflight.Group
	epoch  atomic.Uint64

	mu       sync.Mutex
	phases   map[int64]domain.SyncPhase
	observed map[int64]int64
	lastGood map[int64][]domain.CanonicalResult
}

type SyncOption func(*SyncService)

// WithRaceCatalog supplies stored race names for passes where the upstream
// race list cannot be fetched.
func WithRaceCatalog(races RaceCatalog) SyncOption {
	return func(s *SyncService) { s.races = races }
}

func NewSyncService(
	client TimingClient,
	resolver RankResolver,
	results ResultStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	publisher Publisher,
	metrics SyncRecorder,
	logger *logging.Logger,
	cfg config.SyncConfig,
	opts ...SyncOption,
) *SyncService {
	s := &SyncService{
		client:    client,
		resolver:  resolver,
		results:   results,
		syncState: syncState,
		txManager: txManager,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "sync"),
		config:    cfg,
		now:       time.Now,
		phases:    make(map[int64]domain.SyncPhase),
		observed:  make(map[int64]int64),
		lastGood:  make(map[int64][]domain.CanonicalResult),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select marks eventID as the active selection and returns its epoch.
// Passes started under any earlier epoch are discarded on completion.
func (s *SyncService) Select(eventID int64) uint64 {
	epoch := s.epoch.Add(1)
	s.logger.Debug("selected event", "event_id", eventID, "epoch", epoch)
	return epoch
}

// Phase reports where the event's current pass is.
func (s *SyncService) Phase(eventID int64) domain.SyncPhase {
	s.mu.Lock()
	defer s.mu.Unlock()

	if phase, ok := s.phases[eventID]; ok {
		return phase
	}
	return domain.PhaseIdle
}

// LastGood returns the last result set committed for the event, if any.
func (s *SyncService) LastGood(eventID int64) []domain.CanonicalResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGood[eventID]
}

// RequestResync bumps the persisted sync version so the next pass refetches.
func (s *SyncService) RequestResync(ctx context.Context, eventID int64) (int64, error) {
	version, err := s.syncState.BumpSyncVersion(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("bump sync version: %w", err)
	}
	s.logger.InfoContext(ctx, "resync requested", "event_id", eventID, "sync_version", version)
	return version, nil
}

// SyncEvent returns the event's results, from cache when it is fresh and
// from the timing API otherwise.
//
// The pass itself is detached from ctx and bounded by the pass timeout, so a
// caller that goes away does not fail the others sharing it. When the shared
// pass was started under an older selection and the caller's own epoch is
// still current, the caller queues behind it and runs again.
//
// On a fatal error the returned result still carries the last known good
// rows with Source set to SourceStale, next to a *domain.SyncError.
func (s *SyncService) SyncEvent(ctx context.Context, eventID int64, opts domain.SyncOptions) (*domain.SyncResult, error) {
	result, err := s.share(ctx, eventID, opts)
	for errors.Is(err, domain.ErrSuperseded) && !s.superseded(opts.Epoch) {
		s.logger.DebugContext(ctx, "joined pass was superseded, running again", "event_id", eventID, "epoch", opts.Epoch)
		result, err = s.share(ctx, eventID, opts)
	}

	if s.superseded(opts.Epoch) {
		return nil, domain.ErrSuperseded
	}
	return result, err
}

func (s *SyncService) share(ctx context.Context, eventID int64, opts domain.SyncOptions) (*domain.SyncResult, error) {
	key := strconv.FormatInt(eventID, 10)
	passCtx := context.WithoutCancel(ctx)

	ch := s.flight.DoChan(key, func() (any, error) {
		return s.run(passCtx, eventID, opts)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.DebugContext(ctx, "joined in-flight sync", "event_id", eventID)
		}
		result, _ := res.Val.(*domain.SyncResult)
		return result, res.Err
	}
}

func (s *SyncService) run(ctx context.Context, eventID int64, opts domain.SyncOptions) (*domain.SyncResult, error) {
	if s.config.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.PassTimeout)
		defer cancel()
	}

	started := s.now()
	defer s.setPhase(eventID, domain.PhaseIdle)

	s.setPhase(eventID, domain.PhaseLoadingCache)
	cached := s.loadCached(ctx, eventID)
	if len(cached) > 0 {
		s.setPhase(eventID, domain.PhaseCacheHit)
	} else {
		s.setPhase(eventID, domain.PhaseCacheMiss)
	}

	s.setPhase(eventID, domain.PhaseDeciding)
	state, err := s.syncState.Get(ctx, eventID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read sync state", "event_id", eventID, "error", err)
		state = &domain.SyncState{EventID: eventID}
	}

	if !s.shouldFetchFresh(eventID, opts, cached, state) {
		if s.superseded(opts.Epoch) {
			return nil, domain.ErrSuperseded
		}
		s.commit(eventID, cached, -1)
		s.observe(domain.SourceCache, "ok", started)
		return &domain.SyncResult{EventID: eventID, Results: cached, Source: domain.SourceCache}, nil
	}

	s.setPhase(eventID, domain.PhaseSyncing)
	result, err := s.fetchFresh(ctx, eventID, opts, state)
	if err != nil {
		if errors.Is(err, domain.ErrSuperseded) {
			s.logger.InfoContext(ctx, "discarding superseded sync", "event_id", eventID, "epoch", opts.Epoch)
			return nil, err
		}

		s.logger.ErrorContext(ctx, "sync failed", "event_id", eventID, "error", err)
		s.observe(domain.SourceStale, "error", started)

		stale := s.LastGood(eventID)
		if stale == nil {
			stale = cached
		}
		return &domain.SyncResult{EventID: eventID, Results: stale, Source: domain.SourceStale},
			&domain.SyncError{EventID: eventID, Stage: domain.PhaseSyncing, Err: err}
	}

	result.Stats.Duration = s.now().Sub(started)
	s.observe(domain.SourceFresh, "ok", started)

	s.logger.InfoContext(ctx, "sync completed",
		"event_id", eventID,
		"run_id", result.Stats.RunID,
		"fetched", result.Stats.FetchedRows,
		"results", result.Stats.Results,
		"duplicates", result.Stats.Duplicates,
		"brackets", result.Stats.BracketsUsed,
		"bracket_failures", result.Stats.BracketFailures,
		"warnings", len(result.Stats.Warnings),
		"duration", result.Stats.Duration,
	)

	return result, nil
}

// shouldFetchFresh is true when forced, when nothing is cached, or when the
// persisted sync version moved past what this process last observed.
func (s *SyncService) shouldFetchFresh(eventID int64, opts domain.SyncOptions, cached []domain.CanonicalResult, state *domain.SyncState) bool {
	if opts.Force || len(cached) == 0 {
		return true
	}

	s.mu.Lock()
	observed := s.observed[eventID]
	s.mu.Unlock()

	return state.SyncVersion > observed
}

func (s *SyncService) loadCached(ctx context.Context, eventID int64) []domain.CanonicalResult {
	records, err := s.results.LoadCached(ctx, eventID)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed, treating as miss", "event_id", eventID, "error", err)
		return nil
	}

	results := make([]domain.CanonicalResult, 0, len(records))
	for _, r := range records {
		results = append(results, r.Result)
	}
	return results
}

func (s *SyncService) fetchFresh(ctx context.Context, eventID int64, opts domain.SyncOptions, state *domain.SyncState) (*domain.SyncResult, error) {
	stats := &domain.SyncStats{
		RunID:   uuid.NewString(),
		EventID: eventID,
	}

	rows, err := s.client.FetchAllResults(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	stats.FetchedRows = len(rows)

	raceNames, err := s.raceNames(ctx, eventID, stats)
	if err != nil {
		return nil, err
	}

	resolution, err := s.resolver.ResolveRankLookups(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolve brackets: %w", err)
	}
	stats.BracketsUsed = len(resolution.Brackets)
	stats.BracketFailures = len(resolution.Failures)
	if s.metrics != nil && stats.BracketFailures > 0 {
		s.metrics.AddBracketFailures(stats.BracketFailures)
	}

	normalized := ranking.Normalize(rows, resolution.Lookups, raceNames)
	stats.Results = len(normalized.Results)
	stats.Duplicates = normalized.Duplicates
	stats.Warnings = append(stats.Warnings, normalized.Warnings...)

	if s.superseded(opts.Epoch) {
		return nil, domain.ErrSuperseded
	}

	syncedAt := s.now()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.results.Upsert(txCtx, eventID, normalized.Results); err != nil {
			return err
		}
		return s.syncState.TouchLastSynced(txCtx, eventID, syncedAt, len(normalized.Results))
	})
	if err != nil {
		if !errors.Is(err, domain.ErrCacheWrite) {
			err = domain.CacheWriteError(err)
		}
		return nil, err
	}

	if s.superseded(opts.Epoch) {
		return nil, domain.ErrSuperseded
	}
	s.commit(eventID, normalized.Results, state.SyncVersion)
	s.setPhase(eventID, domain.PhaseMerged)

	result := &domain.SyncResult{
		EventID: eventID,
		Results: normalized.Results,
		Source:  domain.SourceFresh,
		Stats:   stats,
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result); err != nil {
			s.logger.WarnContext(ctx, "failed to publish results", "event_id", eventID, "error", err)
		}
	}

	return result, nil
}

// raceNames prefers the live race list and falls back to the stored catalog.
// Only an auth failure is returned; anything else leaves names unset.
func (s *SyncService) raceNames(ctx context.Context, eventID int64, stats *domain.SyncStats) (map[int64]string, error) {
	races, err := s.client.ListRaces(ctx, eventID)
	if err == nil {
		names := make(map[int64]string, len(races))
		for _, r := range races {
			names[r.ID] = r.Name
		}
		return names, nil
	}
	if errors.Is(err, domain.ErrAuth) {
		return nil, fmt.Errorf("list races: %w", err)
	}

	s.logger.WarnContext(ctx, "failed to list races", "event_id", eventID, "error", err)

	if s.races != nil {
		names, catalogErr := s.races.RaceNames(ctx, eventID)
		if catalogErr == nil && len(names) > 0 {
			stats.Warnings = append(stats.Warnings, domain.Warning{Message: "race names taken from stored catalog: " + err.Error()})
			return names, nil
		}
	}

	stats.Warnings = append(stats.Warnings, domain.Warning{Message: "race names unavailable: " + err.Error()})
	return nil, nil
}

// commit stores the results as last known good. version < 0 leaves the
// observed sync version untouched.
func (s *SyncService) commit(eventID int64, results []domain.CanonicalResult, version int64) {
	s.mu.Lock()
	s.lastGood[eventID] = results
	if version >= 0 {
		s.observed[eventID] = version
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetCachedResults(eventID, len(results))
	}
}

func (s *SyncService) superseded(epoch uint64) bool {
	return epoch != 0 && epoch != s.epoch.Load()
}

func (s *SyncService) setPhase(eventID int64, phase domain.SyncPhase) {
	s.mu.Lock()
	if phase == domain.PhaseIdle {
		delete(s.phases, eventID)
	} else {
		s.phases[eventID] = phase
	}
	s.mu.Unlock()
}

func (s *SyncService) observe(source domain.ResultSource, outcome string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSync(source, outcome, s.now().Sub(started))
	}
}
