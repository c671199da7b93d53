package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
)

// MaxBracketConcurrency is the upstream rate limit for parallel bracket fetches.
const MaxBracketConcurrency = 5

// BracketSource is the subset of the timing client the resolver needs.
type BracketSource interface {
	ListBrackets(ctx context.Context, eventID int64) ([]domain.Bracket, error)
	FetchAllBracketResults(ctx context.Context, bracketID int64) ([]domain.RawResultRow, error)
}

// Resolution is the outcome of resolving one event's brackets.
type Resolution struct {
	Lookups domain.RankLookups
	// Brackets are the classified brackets that took part, in upstream order.
	Brackets []domain.Bracket
	// Failures holds one BracketFetchError per skipped bracket.
	Failures []error
}

type Resolver struct {
	source      BracketSource
	concurrency int
	logger      *logging.Logger
}

func NewResolver(source BracketSource, concurrency int, logger *logging.Logger) *Resolver {
	if concurrency < 1 || concurrency > MaxBracketConcurrency {
		concurrency = MaxBracketConcurrency
	}
	return &Resolver{
		source:      source,
		concurrency: concurrency,
		logger:      logger.With("component", "bracket_resolver"),
	}
}

type bracketOutcome struct {
	entries []domain.BracketRankEntry
	err     error
}

// ResolveRankLookups builds the gender and division place tables for an event.
// A bracket that fails to load is skipped and reported in Resolution.Failures;
// only authentication failures and cancellation abort resolution.
func (r *Resolver) ResolveRankLookups(ctx context.Context, eventID int64) (*Resolution, error) {
	res := &Resolution{Lookups: domain.NewRankLookups()}

	all, err := r.source.ListBrackets(ctx, eventID)
	if err != nil {
		if fatal(err) {
			return nil, err
		}
		r.logger.WarnContext(ctx, "failed to list brackets", "event_id", eventID, "error", err)
		res.Failures = append(res.Failures, domain.BracketFetchError(0, err))
		return res, nil
	}

	for _, b := range all {
		if !b.WantsLeaderboard {
			continue
		}
		b.Kind = Classify(b)
		if b.Kind == domain.BracketUnclassified {
			r.logger.DebugContext(ctx, "ignoring unclassified bracket", "bracket_id", b.ID, "name", b.Name)
			continue
		}
		res.Brackets = append(res.Brackets, b)
	}

	outcomes, err := r.fetchAll(ctx, res.Brackets)
	if err != nil {
		return nil, err
	}

	for i, b := range res.Brackets {
		outcome := outcomes[i]
		if outcome.err != nil {
			if fatal(outcome.err) {
				return nil, outcome.err
			}
			r.logger.WarnContext(ctx, "skipping bracket",
				"event_id", eventID,
				"bracket_id", b.ID,
				"bracket", b.Name,
				"error", outcome.err,
			)
			res.Failures = append(res.Failures, domain.BracketFetchError(b.ID, outcome.err))
			continue
		}
		merge(res.Lookups, b, outcome.entries)
	}

	r.logger.InfoContext(ctx, "resolved rank lookups",
		"event_id", eventID,
		"brackets", len(res.Brackets),
		"failed", len(res.Failures),
		"gender_places", len(res.Lookups.GenderPlace),
		"division_places", len(res.Lookups.Division),
	)

	return res, nil
}

// fetchAll loads every bracket's results on a pool bounded by r.concurrency.
// Outcomes are slotted by bracket index so merging stays in upstream order.
func (r *Resolver) fetchAll(ctx context.Context, brackets []domain.Bracket) ([]bracketOutcome, error) {
	outcomes := make([]bracketOutcome, len(brackets))
	if len(brackets) == 0 {
		return outcomes, nil
	}

	pool, err := ants.NewPool(r.concurrency)
	if err != nil {
		return nil, fmt.Errorf("create bracket pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	var submitErr error
	for i, b := range brackets {
		i, b := i, b
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			outcomes[i] = r.fetchBracket(ctx, b)
		}); err != nil {
			workers.Done()
			submitErr = fmt.Errorf("submit bracket %d: %w", b.ID, err)
			break
		}
	}
	workers.Wait()

	if submitErr != nil {
		return nil, submitErr
	}
	return outcomes, nil
}

func (r *Resolver) fetchBracket(ctx context.Context, b domain.Bracket) bracketOutcome {
	rows, err := r.source.FetchAllBracketResults(ctx, b.ID)
	if err != nil {
		return bracketOutcome{err: err}
	}

	entries := make([]domain.BracketRankEntry, 0, len(rows))
	for _, row := range rows {
		identity := identityOf(row, bracketResultFields.EntryID, bracketResultFields.Bib, bracketResultFields.RaceID)
		if identity.RaceID == nil {
			identity.RaceID = b.RaceID
		}
		rank := bracketResultFields.Rank.Int(row)
		if rank == nil || *rank <= 0 || len(identity.Keys()) == 0 {
			continue
		}
		entries = append(entries, domain.BracketRankEntry{
			Identity:    identity,
			Rank:        *rank,
			BracketID:   b.ID,
			BracketName: b.Name,
		})
	}
	return bracketOutcome{entries: entries}
}

// merge applies one bracket's entries. Gender places are last write wins in
// bracket order; division places keep the lowest rank across AGE brackets,
// and the first bracket seen wins a tie.
func merge(lookups domain.RankLookups, b domain.Bracket, entries []domain.BracketRankEntry) {
	for _, entry := range entries {
		for _, key := range lookupKeys(entry.Identity) {
			switch b.Kind {
			case domain.BracketGender:
				lookups.GenderPlace[key] = entry.Rank
			case domain.BracketAge:
				current, ok := lookups.Division[key]
				if !ok || entry.Rank < current.Place {
					lookups.Division[key] = domain.DivisionPlace{Name: entry.BracketName, Place: entry.Rank}
				}
			}
		}
	}
}

// lookupKeys adds the race-less bib key to the identity's keys, so an overall
// row that carries no race_id still finds a bracket row scoped to a race.
func lookupKeys(identity domain.ParticipantIdentity) []string {
	keys := identity.Keys()
	if identity.RaceID == nil || strings.TrimSpace(identity.Bib) == "" {
		return keys
	}
	return append(keys, domain.ParticipantIdentity{Bib: identity.Bib}.Key())
}

func fatal(err error) bool {
	return errors.Is(err, domain.ErrAuth) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
