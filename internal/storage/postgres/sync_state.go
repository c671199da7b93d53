package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"results_sync/internal/domain"
)

type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

func (s *SyncStateStore) Get(ctx context.Context, eventID int64) (*domain.SyncState, error) {
	var state domain.SyncState
	query := `
		SELECT event_id, last_synced_at, sync_version, total_synced
		FROM sync_state
		WHERE event_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		// never synced
		return &domain.SyncState{EventID: eventID}, nil
	}
	if err != nil {
		return nil, err
	}
	if state.LastSyncedAt.Unix() == 0 {
		// version bumped before the first pass
		state.LastSyncedAt = time.Time{}
	}
	return &state, nil
}

// TouchLastSynced records a completed pass. sync_version is left alone.
func (s *SyncStateStore) TouchLastSynced(ctx context.Context, eventID int64, syncedAt time.Time, total int) error {
	query := `
		INSERT INTO sync_state (event_id, last_synced_at, total_synced)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			total_synced = EXCLUDED.total_synced`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, eventID, syncedAt, total)
	return err
}

// BumpSyncVersion asks every process to refetch the event on its next sync.
func (s *SyncStateStore) BumpSyncVersion(ctx context.Context, eventID int64) (int64, error) {
	query := `
		INSERT INTO sync_state (event_id, sync_version)
		VALUES ($1, 1)
		ON CONFLICT (event_id) DO UPDATE SET
			sync_version = sync_state.sync_version + 1
		RETURNING sync_version`

	var version int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &version, query, eventID)
	return version, err
}
