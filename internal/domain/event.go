package domain

import "time"

type Event struct {
	ID        int64
	Name      string
	StartAt   time.Time
	EndAt     *time.Time // unknown until the provider publishes it, possibly never
	Races     []Race
	UpdatedAt time.Time
}

type Race struct {
	ID           int64
	EventID      int64
	Name         string
	Distance     *float64
	DistanceUnit string
	StartAt      *time.Time
}

// BracketKind is the classification a bracket participates in rank resolution with.
type BracketKind string

const (
	BracketAge          BracketKind = "AGE"
	BracketGender       BracketKind = "GENDER"
	BracketUnclassified BracketKind = "UNCLASSIFIED"
)

type Bracket struct {
	ID               int64
	EventID          int64
	RaceID           *int64
	Name             string
	TypeTag          string // raw upstream type, not always populated
	Kind             BracketKind
	WantsLeaderboard bool
}
