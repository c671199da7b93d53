package timing

import (
	"strings"
	"time"

	"results_sync/internal/domain"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Page is one page of rows from a paginated endpoint.
type Page[T any] struct {
	Number int
	Size   int
	Items  []T
}

// Full reports whether another page may follow.
func (p Page[T]) Full() bool {
	return p.Size > 0 && len(p.Items) == p.Size
}

// Envelope keys. Some provider versions return a bare array instead.
var (
	eventsKey   = domain.FieldChain{"events", "event_list"}
	racesKey    = domain.FieldChain{"races", "race_list"}
	resultsKey  = domain.FieldChain{"results", "individual_results", "result_list"}
	bracketsKey = domain.FieldChain{"brackets", "bracket_list"}
)

var eventFields = struct {
	ID, Name, Start, End, Updated domain.FieldChain
}{
	ID:      domain.FieldChain{"event_id", "id"},
	Name:    domain.FieldChain{"name", "event_name"},
	Start:   domain.FieldChain{"start_time", "start_epoch", "start_date"},
	End:     domain.FieldChain{"end_time", "end_epoch", "end_date"},
	Updated: domain.FieldChain{"last_modified", "updated_at"},
}

var raceFields = struct {
	ID, Name, Distance, Unit, Start domain.FieldChain
}{
	ID:       domain.FieldChain{"race_id", "id"},
	Name:     domain.FieldChain{"name", "race_name"},
	Distance: domain.FieldChain{"distance", "race_distance"},
	Unit:     domain.FieldChain{"distance_unit", "unit"},
	Start:    domain.FieldChain{"start_time", "start_epoch", "race_start_time"},
}

var bracketFields = struct {
	ID, RaceID, Name, Type, Leaderboard domain.FieldChain
}{
	ID:          domain.FieldChain{"bracket_id", "id"},
	RaceID:      domain.FieldChain{"race_id"},
	Name:        domain.FieldChain{"bracket_name", "name"},
	Type:        domain.FieldChain{"bracket_type", "type", "tag"},
	Leaderboard: domain.FieldChain{"wants_leaderboard", "leaderboard", "show_leaderboard"},
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// timeField reads epoch seconds or one of timeLayouts.
func timeField(row domain.Row, chain domain.FieldChain) *time.Time {
	if epoch := chain.Int64(row); epoch != nil {
		t := time.Unix(*epoch, 0).UTC()
		return &t
	}
	s := chain.String(row)
	if s == nil {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

func toEvent(row domain.Row) (domain.Event, bool) {
	id := eventFields.ID.Int64(row)
	if id == nil {
		return domain.Event{}, false
	}
	event := domain.Event{
		ID:    *id,
		Name:  eventFields.Name.Text(row),
		EndAt: timeField(row, eventFields.End),
	}
	if start := timeField(row, eventFields.Start); start != nil {
		event.StartAt = *start
	}
	if updated := timeField(row, eventFields.Updated); updated != nil {
		event.UpdatedAt = *updated
	}
	return event, true
}

func toRace(eventID int64, row domain.Row) (domain.Race, bool) {
	id := raceFields.ID.Int64(row)
	if id == nil {
		return domain.Race{}, false
	}
	return domain.Race{
		ID:           *id,
		EventID:      eventID,
		Name:         raceFields.Name.Text(row),
		Distance:     raceFields.Distance.Float64(row),
		DistanceUnit: raceFields.Unit.Text(row),
		StartAt:      timeField(row, raceFields.Start),
	}, true
}

func toBracket(eventID int64, row domain.Row) (domain.Bracket, bool) {
	id := bracketFields.ID.Int64(row)
	if id == nil {
		return domain.Bracket{}, false
	}
	return domain.Bracket{
		ID:               *id,
		EventID:          eventID,
		RaceID:           bracketFields.RaceID.Int64(row),
		Name:             strings.TrimSpace(bracketFields.Name.Text(row)),
		TypeTag:          strings.TrimSpace(bracketFields.Type.Text(row)),
		WantsLeaderboard: bracketFields.Leaderboard.Bool(row),
	}, true
}
