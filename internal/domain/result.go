package domain

import (
	"strconv"
	"strings"
	"time"
)

// RawResultRow is one finisher row as decoded from the overall results endpoint.
// Field names vary between provider versions, so rows stay untyped until normalized.
type RawResultRow = Row

// ParticipantIdentity matches rows across independent API calls.
// EntryID is preferred; (Bib, RaceID) is the fallback composite key.
type ParticipantIdentity struct {
	EntryID *int64
	Bib     string
	RaceID  *int64
}

// Key returns the string form used for lookups and as the persisted conflict key.
// An empty key means the row carries no usable identity.
func (p ParticipantIdentity) Key() string {
	if p.EntryID != nil {
		return "entry:" + strconv.FormatInt(*p.EntryID, 10)
	}
	bib := strings.TrimSpace(p.Bib)
	if bib == "" {
		return ""
	}
	race := ""
	if p.RaceID != nil {
		race = strconv.FormatInt(*p.RaceID, 10)
	}
	return "bib:" + bib + "|race:" + race
}

// Keys returns every key the identity can be matched under, preferred first.
// Bracket endpoints do not always echo entry ids, so lookups are written and
// read under both forms.
func (p ParticipantIdentity) Keys() []string {
	keys := make([]string, 0, 2)
	if p.EntryID != nil {
		keys = append(keys, "entry:"+strconv.FormatInt(*p.EntryID, 10))
	}
	if bib := strings.TrimSpace(p.Bib); bib != "" {
		fallback := ParticipantIdentity{Bib: bib, RaceID: p.RaceID}
		keys = append(keys, fallback.Key())
	}
	return keys
}

// IsFallback reports whether the identity relies on the bib composite key.
func (p ParticipantIdentity) IsFallback() bool {
	return p.EntryID == nil
}

type BracketRankEntry struct {
	Identity    ParticipantIdentity
	Rank        int
	BracketID   int64
	BracketName string
}

type DivisionPlace struct {
	Name  string
	Place int
}

// RankLookups holds the per-event rank tables keyed by ParticipantIdentity.Key().
type RankLookups struct {
	GenderPlace map[string]int
	Division    map[string]DivisionPlace
}

func NewRankLookups() RankLookups {
	return RankLookups{
		GenderPlace: make(map[string]int),
		Division:    make(map[string]DivisionPlace),
	}
}

type Split struct {
	Name  string  `json:"name"`
	Time  *string `json:"time,omitempty"`
	Pace  *string `json:"pace,omitempty"`
	Place *int    `json:"place,omitempty"`
}

// CanonicalResult is the merged unit persisted to the cache and read by presentation layers.
type CanonicalResult struct {
	Identity      string   `json:"identity"`
	EntryID       *int64   `json:"entry_id,omitempty"`
	RaceID        *int64   `json:"race_id,omitempty"`
	RaceName      *string  `json:"race_name,omitempty"`
	Bib           *string  `json:"bib,omitempty"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Gender        *string  `json:"gender,omitempty"`
	Age           *int     `json:"age,omitempty"`
	City          *string  `json:"city,omitempty"`
	State         *string  `json:"state,omitempty"`
	Country       *string  `json:"country,omitempty"`
	ChipTime      *string  `json:"chip_time,omitempty"`
	ClockTime     *string  `json:"clock_time,omitempty"`
	Pace          *string  `json:"pace,omitempty"`
	OverallPlace  *int     `json:"overall_place,omitempty"`
	GenderPlace   *int     `json:"gender_place,omitempty"`
	DivisionName  *string  `json:"division_name,omitempty"`
	DivisionPlace *int     `json:"division_place,omitempty"`
	Splits        []Split  `json:"splits"`
}

type CacheRecord struct {
	ID        int64
	EventID   int64
	EntryKey  string
	Result    CanonicalResult
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Warning is a non-fatal data quality finding raised during normalization.
type Warning struct {
	Identity string
	Message  string
}
