package ranking

import "results_sync/internal/domain"

// Field chains per record type. Provider versions disagree on key names, so
// each logical field lists its known spellings in preference order.
var resultFields = struct {
	EntryID, Bib, RaceID, RaceName                  domain.FieldChain
	FirstName, LastName, Gender, Age                domain.FieldChain
	City, State, Country                            domain.FieldChain
	ChipTime, ClockTime, Pace, OverallPlace, Splits domain.FieldChain
}{
	EntryID:      domain.FieldChain{"entry_id", "entryId", "registration_id"},
	Bib:          domain.FieldChain{"bib", "bib_num", "bib_number"},
	RaceID:       domain.FieldChain{"race_id", "raceId"},
	RaceName:     domain.FieldChain{"race_name"},
	FirstName:    domain.FieldChain{"first_name", "firstname", "participant_first_name"},
	LastName:     domain.FieldChain{"last_name", "lastname", "participant_last_name"},
	Gender:       domain.FieldChain{"gender", "sex"},
	Age:          domain.FieldChain{"age", "race_age"},
	City:         domain.FieldChain{"city"},
	State:        domain.FieldChain{"state", "province"},
	Country:      domain.FieldChain{"country", "country_code"},
	ChipTime:     domain.FieldChain{"chip_time", "chiptime", "result_time"},
	ClockTime:    domain.FieldChain{"clock_time", "gun_time", "clocktime"},
	Pace:         domain.FieldChain{"pace", "avg_pace", "chip_pace"},
	OverallPlace: domain.FieldChain{"place", "overall_place", "rank"},
	Splits:       domain.FieldChain{"splits", "intervals", "split_results"},
}

var splitFields = struct {
	Name, Time, Pace, Place domain.FieldChain
}{
	Name:  domain.FieldChain{"name", "split_name", "interval_name"},
	Time:  domain.FieldChain{"time", "split_time", "duration", "chip_time"},
	Pace:  domain.FieldChain{"pace", "split_pace"},
	Place: domain.FieldChain{"place", "rank", "overall_place"},
}

var bracketResultFields = struct {
	EntryID, Bib, RaceID, Rank domain.FieldChain
}{
	EntryID: resultFields.EntryID,
	Bib:     resultFields.Bib,
	RaceID:  resultFields.RaceID,
	Rank:    domain.FieldChain{"bracket_rank", "rank", "place", "division_place"},
}

func identityOf(row domain.Row, entryID, bib, raceID domain.FieldChain) domain.ParticipantIdentity {
	return domain.ParticipantIdentity{
		EntryID: entryID.Int64(row),
		Bib:     bib.Text(row),
		RaceID:  raceID.Int64(row),
	}
}
