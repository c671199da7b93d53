package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"results_sync/internal/domain"
)

type eventRow struct {
	ID        int64        `db:"id"`
	Name      string       `db:"name"`
	StartAt   time.Time    `db:"start_at"`
	EndAt     sql.NullTime `db:"end_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

type raceRow struct {
	ID           int64           `db:"id"`
	EventID      int64           `db:"event_id"`
	Name         string          `db:"name"`
	Distance     sql.NullFloat64 `db:"distance"`
	DistanceUnit string          `db:"distance_unit"`
	StartAt      sql.NullTime    `db:"start_at"`
}

// EventStore holds the imported event catalog.
type EventStore struct {
	db *sqlx.DB
}

func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) UpsertEvent(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, name, start_at, end_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at,
			updated_at = EXCLUDED.updated_at,
			imported_at = NOW()`

	var updatedAt *time.Time
	if !event.UpdatedAt.IsZero() {
		updatedAt = &event.UpdatedAt
	}

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		event.Name,
		event.StartAt,
		event.EndAt,
		updatedAt,
	)
	return err
}

// ReplaceRaces swaps the stored races of an event for the given set.
func (s *EventStore) ReplaceRaces(ctx context.Context, eventID int64, races []domain.Race) error {
	exec := GetExecutor(ctx, s.db)

	if _, err := exec.ExecContext(ctx, "DELETE FROM races WHERE event_id = $1", eventID); err != nil {
		return fmt.Errorf("delete races: %w", err)
	}
	if len(races) == 0 {
		return nil
	}
	races = lastByRaceID(races)

	var sb strings.Builder
	sb.WriteString("INSERT INTO races (id, event_id, name, distance, distance_unit, start_at) VALUES ")
	valueArgs := make([]interface{}, 0, len(races)*6)

	for i, race := range races {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		sb.WriteString("(")
		for col := 1; col <= 6; col++ {
			if col > 1 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(base + col))
		}
		sb.WriteString(")")
		valueArgs = append(valueArgs, race.ID, eventID, race.Name, race.Distance, race.DistanceUnit, race.StartAt)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		event_id = EXCLUDED.event_id,
		name = EXCLUDED.name,
		distance = EXCLUDED.distance,
		distance_unit = EXCLUDED.distance_unit,
		start_at = EXCLUDED.start_at`)

	_, err := exec.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

// lastByRaceID keeps the last race per id in first-seen order.
func lastByRaceID(races []domain.Race) []domain.Race {
	position := make(map[int64]int, len(races))
	out := make([]domain.Race, 0, len(races))
	for _, r := range races {
		if idx, ok := position[r.ID]; ok {
			out[idx] = r
			continue
		}
		position[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// GetEvent returns the event with its races, or domain.ErrNotFound.
func (s *EventStore) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	exec := GetExecutor(ctx, s.db)

	var row eventRow
	err := sqlx.GetContext(ctx, exec, &row,
		`SELECT id, name, start_at, end_at, updated_at FROM events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var races []raceRow
	err = sqlx.SelectContext(ctx, exec, &races, `
		SELECT id, event_id, name, distance, distance_unit, start_at
		FROM races
		WHERE event_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("select races: %w", err)
	}

	event := row.toDomain()
	for _, r := range races {
		event.Races = append(event.Races, r.toDomain())
	}
	return &event, nil
}

// ListStartingBetween returns events whose start falls in [from, to).
func (s *EventStore) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	var rows []eventRow
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, `
		SELECT id, name, start_at, end_at, updated_at
		FROM events
		WHERE start_at >= $1 AND start_at < $2
		ORDER BY start_at, id`, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toDomain())
	}
	return events, nil
}

// RaceNames maps race id to name for an event.
func (s *EventStore) RaceNames(ctx context.Context, eventID int64) (map[int64]string, error) {
	var races []raceRow
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &races, `
		SELECT id, event_id, name, distance, distance_unit, start_at
		FROM races
		WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(races))
	for _, r := range races {
		names[r.ID] = r.Name
	}
	return names, nil
}

func (r eventRow) toDomain() domain.Event {
	event := domain.Event{
		ID:      r.ID,
		Name:    r.Name,
		StartAt: r.StartAt,
	}
	if r.EndAt.Valid {
		end := r.EndAt.Time
		event.EndAt = &end
	}
	if r.UpdatedAt.Valid {
		event.UpdatedAt = r.UpdatedAt.Time
	}
	return event
}

func (r raceRow) toDomain() domain.Race {
	race := domain.Race{
		ID:           r.ID,
		EventID:      r.EventID,
		Name:         r.Name,
		DistanceUnit: r.DistanceUnit,
	}
	if r.Distance.Valid {
		d := r.Distance.Float64
		race.Distance = &d
	}
	if r.StartAt.Valid {
		start := r.StartAt.Time
		race.StartAt = &start
	}
	return race
}
