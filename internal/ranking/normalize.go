package ranking

import (
	"fmt"

	"results_sync/internal/domain"
)

// Normalized is the deduplicated output of one normalization run.
type Normalized struct {
	Results    []domain.CanonicalResult
	Warnings   []domain.Warning
	Duplicates int
	Dropped    int
}

// Normalize merges raw rows with the rank lookups into canonical results.
//
// Rows are deduplicated by identity: a later row replaces the earlier one
// entirely, and output keeps first-seen order. raceNames may be nil when the
// race list could not be loaded.
func Normalize(rows []domain.RawResultRow, lookups domain.RankLookups, raceNames map[int64]string) Normalized {
	var out Normalized

	position := make(map[string]int, len(rows))
	out.Results = make([]domain.CanonicalResult, 0, len(rows))

	for i, row := range rows {
		identity := identityOf(row, resultFields.EntryID, resultFields.Bib, resultFields.RaceID)
		key := identity.Key()
		if key == "" {
			out.Dropped++
			out.Warnings = append(out.Warnings, domain.Warning{
				Message: fmt.Sprintf("row %d has neither entry_id nor bib, dropped", i),
			})
			continue
		}

		result := canonical(row, identity, key, lookups, raceNames)

		if idx, seen := position[key]; seen {
			out.Results[idx] = result
			out.Duplicates++
			if identity.IsFallback() {
				out.Warnings = append(out.Warnings, domain.Warning{
					Identity: key,
					Message:  "duplicate bib key, earlier row replaced",
				})
			}
			continue
		}

		if identity.IsFallback() && identity.RaceID == nil {
			out.Warnings = append(out.Warnings, domain.Warning{
				Identity: key,
				Message:  "no entry_id or race_id, bib key may collide across races",
			})
		}

		position[key] = len(out.Results)
		out.Results = append(out.Results, result)
	}

	return out
}

func canonical(row domain.RawResultRow, identity domain.ParticipantIdentity, key string, lookups domain.RankLookups, raceNames map[int64]string) domain.CanonicalResult {
	result := domain.CanonicalResult{
		Identity:     key,
		EntryID:      identity.EntryID,
		RaceID:       identity.RaceID,
		RaceName:     resultFields.RaceName.String(row),
		Bib:          resultFields.Bib.String(row),
		FirstName:    resultFields.FirstName.Text(row),
		LastName:     resultFields.LastName.Text(row),
		Gender:       resultFields.Gender.String(row),
		Age:          resultFields.Age.Int(row),
		City:         resultFields.City.String(row),
		State:        resultFields.State.String(row),
		Country:      resultFields.Country.String(row),
		ChipTime:     resultFields.ChipTime.String(row),
		ClockTime:    resultFields.ClockTime.String(row),
		Pace:         resultFields.Pace.String(row),
		OverallPlace: resultFields.OverallPlace.Int(row),
		Splits:       splits(row),
	}

	if result.RaceName == nil && identity.RaceID != nil {
		if name, ok := raceNames[*identity.RaceID]; ok {
			result.RaceName = &name
		}
	}

	for _, k := range identity.Keys() {
		if place, ok := lookups.GenderPlace[k]; ok {
			result.GenderPlace = &place
			break
		}
	}
	for _, k := range identity.Keys() {
		if division, ok := lookups.Division[k]; ok {
			name, place := division.Name, division.Place
			result.DivisionName = &name
			result.DivisionPlace = &place
			break
		}
	}

	return result
}

func splits(row domain.RawResultRow) []domain.Split {
	raw := resultFields.Splits.Rows(row)
	out := make([]domain.Split, 0, len(raw))
	for i, s := range raw {
		name := splitFields.Name.Text(s)
		if name == "" {
			name = fmt.Sprintf("Split %d", i+1)
		}
		out = append(out, domain.Split{
			Name:  name,
			Time:  splitFields.Time.String(s),
			Pace:  splitFields.Pace.String(s),
			Place: splitFields.Place.Int(s),
		})
	}
	return out
}
