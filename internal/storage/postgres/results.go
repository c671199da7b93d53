package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"results_sync/internal/domain"
)

const (
	defaultCachePageSize = 1000
	defaultChunkSize     = 500
)

var resultColumns = []string{
	"event_id", "entry_key", "entry_id", "race_id", "race_name", "bib",
	"first_name", "last_name", "gender", "age", "city", "state", "country",
	"chip_time", "clock_time", "pace",
	"overall_place", "gender_place", "division_name", "division_place", "splits",
}

type resultRow struct {
	ID            int64          `db:"id"`
	EventID       int64          `db:"event_id"`
	EntryKey      string         `db:"entry_key"`
	EntryID       sql.NullInt64  `db:"entry_id"`
	RaceID        sql.NullInt64  `db:"race_id"`
	RaceName      sql.NullString `db:"race_name"`
	Bib           sql.NullString `db:"bib"`
	FirstName     string         `db:"first_name"`
	LastName      string         `db:"last_name"`
	Gender        sql.NullString `db:"gender"`
	Age           sql.NullInt64  `db:"age"`
	City          sql.NullString `db:"city"`
	State         sql.NullString `db:"state"`
	Country       sql.NullString `db:"country"`
	ChipTime      sql.NullString `db:"chip_time"`
	ClockTime     sql.NullString `db:"clock_time"`
	Pace          sql.NullString `db:"pace"`
	OverallPlace  sql.NullInt64  `db:"overall_place"`
	GenderPlace   sql.NullInt64  `db:"gender_place"`
	DivisionName  sql.NullString `db:"division_name"`
	DivisionPlace sql.NullInt64  `db:"division_place"`
	Splits        []byte         `db:"splits"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// ResultStore is the persistent results cache, keyed by (event_id, entry_key).
type ResultStore struct {
	db        *sqlx.DB
	pageSize  int
	chunkSize int
}

func NewResultStore(db *sqlx.DB, pageSize, chunkSize int) *ResultStore {
	if pageSize <= 0 {
		pageSize = defaultCachePageSize
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &ResultStore{db: db, pageSize: pageSize, chunkSize: chunkSize}
}

// LoadCached reads every cached result of an event, one id-ordered page at a time.
func (s *ResultStore) LoadCached(ctx context.Context, eventID int64) ([]domain.CacheRecord, error) {
	query := `
		SELECT id, event_id, entry_key, entry_id, race_id, race_name, bib,
			first_name, last_name, gender, age, city, state, country,
			chip_time, clock_time, pace,
			overall_place, gender_place, division_name, division_place, splits,
			created_at, updated_at
		FROM results
		WHERE event_id = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3`

	var records []domain.CacheRecord
	for offset := 0; ; offset += s.pageSize {
		var rows []resultRow
		if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, eventID, s.pageSize, offset); err != nil {
			return nil, domain.CacheReadError(fmt.Errorf("select results offset %d: %w", offset, err))
		}

		for _, row := range rows {
			record, err := row.toRecord()
			if err != nil {
				return nil, domain.CacheReadError(err)
			}
			records = append(records, record)
		}

		if len(rows) < s.pageSize {
			return records, nil
		}
	}
}

// Upsert writes results in chunks of one multi-row INSERT ... ON CONFLICT each.
// All chunks commit together: the caller's transaction is joined when present,
// otherwise Upsert opens its own.
func (s *ResultStore) Upsert(ctx context.Context, eventID int64, results []domain.CanonicalResult) error {
	if len(results) == 0 {
		return nil
	}

	results = lastByIdentity(results)

	write := func(ctx context.Context) error {
		exec := GetExecutor(ctx, s.db)
		for start := 0; start < len(results); start += s.chunkSize {
			end := min(start+s.chunkSize, len(results))
			if err := s.upsertChunk(ctx, exec, eventID, results[start:end]); err != nil {
				return domain.CacheWriteError(fmt.Errorf("upsert results %d-%d: %w", start, end, err))
			}
		}
		return nil
	}

	if GetTxFromContext(ctx) != nil {
		return write(ctx)
	}
	return NewTransactionManager(s.db).WithTransaction(ctx, write)
}

func (s *ResultStore) upsertChunk(ctx context.Context, exec sqlx.ExtContext, eventID int64, chunk []domain.CanonicalResult) error {
	var sb strings.Builder
	sb.WriteString("INSERT INTO results (")
	sb.WriteString(strings.Join(resultColumns, ", "))
	sb.WriteString(") VALUES ")

	width := len(resultColumns)
	valueArgs := make([]interface{}, 0, len(chunk)*width)

	for i, r := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := 0; col < width; col++ {
			if col > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*width + col + 1))
		}
		sb.WriteString(")")

		splits := r.Splits
		if splits == nil {
			splits = []domain.Split{}
		}
		splitsJSON, err := sonic.Marshal(splits)
		if err != nil {
			return fmt.Errorf("encode splits for %s: %w", r.Identity, err)
		}

		valueArgs = append(valueArgs,
			eventID, r.Identity, r.EntryID, r.RaceID, r.RaceName, r.Bib,
			r.FirstName, r.LastName, r.Gender, r.Age, r.City, r.State, r.Country,
			r.ChipTime, r.ClockTime, r.Pace,
			r.OverallPlace, r.GenderPlace, r.DivisionName, r.DivisionPlace, string(splitsJSON),
		)
	}

	sb.WriteString(" ON CONFLICT (event_id, entry_key) DO UPDATE SET ")
	for i, col := range resultColumns[2:] {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = EXCLUDED.")
		sb.WriteString(col)
	}
	sb.WriteString(", updated_at = NOW()")

	_, err := exec.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

// CountByEvent returns how many results are cached for an event.
func (s *ResultStore) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM results WHERE event_id = $1`, eventID)
	return n, err
}

// lastByIdentity keeps the last result per identity in first-seen order.
// A single INSERT cannot touch the same conflict key twice.
func lastByIdentity(results []domain.CanonicalResult) []domain.CanonicalResult {
	position := make(map[string]int, len(results))
	out := make([]domain.CanonicalResult, 0, len(results))
	for _, r := range results {
		if idx, ok := position[r.Identity]; ok {
			out[idx] = r
			continue
		}
		position[r.Identity] = len(out)
		out = append(out, r)
	}
	return out
}

func (r resultRow) toRecord() (domain.CacheRecord, error) {
	result := domain.CanonicalResult{
		Identity:      r.EntryKey,
		EntryID:       nullInt64(r.EntryID),
		RaceID:        nullInt64(r.RaceID),
		RaceName:      nullString(r.RaceName),
		Bib:           nullString(r.Bib),
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Gender:        nullString(r.Gender),
		Age:           nullInt(r.Age),
		City:          nullString(r.City),
		State:         nullString(r.State),
		Country:       nullString(r.Country),
		ChipTime:      nullString(r.ChipTime),
		ClockTime:     nullString(r.ClockTime),
		Pace:          nullString(r.Pace),
		OverallPlace:  nullInt(r.OverallPlace),
		GenderPlace:   nullInt(r.GenderPlace),
		DivisionName:  nullString(r.DivisionName),
		DivisionPlace: nullInt(r.DivisionPlace),
		Splits:        []domain.Split{},
	}
	if len(r.Splits) > 0 {
		if err := sonic.Unmarshal(r.Splits, &result.Splits); err != nil {
			return domain.CacheRecord{}, fmt.Errorf("decode splits for result %d: %w", r.ID, err)
		}
	}

	return domain.CacheRecord{
		ID:        r.ID,
		EventID:   r.EventID,
		EntryKey:  r.EntryKey,
		Result:    result,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
