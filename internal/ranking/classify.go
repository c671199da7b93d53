package ranking

import (
	"regexp"
	"strings"
	"unicode"

	"results_sync/internal/domain"
)

var ageRangePattern = regexp.MustCompile(`(?i)` +
	`\b\d{1,2}\s*(?:-|–|to)\s*\d{1,3}\b` + // 30-34, 40 to 44
	`|\b(?:under|over)\s*\d{1,2}\b` + // under 20
	`|\b\d{1,2}\s*(?:\+|&\s*(?:over|up|older)|and\s+(?:over|up|older|under))` + // 60+, 70 & over
	`|\bu\d{1,2}\b`, // U20
)

var genderTokens = map[string]struct{}{
	"male":   {},
	"female": {},
	"men":    {},
	"women":  {},
	"mens":   {},
	"womens": {},
}

// Classify decides how a bracket takes part in rank resolution.
//
// An explicit AGE or GENDER type marker wins. Otherwise an age range in the
// name makes it AGE, so "Female 30-34" is a division. Otherwise a whole-word
// male/female/men/women makes it GENDER. Everything else is UNCLASSIFIED and
// is ignored by the resolver.
func Classify(b domain.Bracket) domain.BracketKind {
	switch strings.ToUpper(strings.TrimSpace(b.TypeTag)) {
	case "AGE", "AGE_GROUP", "DIVISION":
		return domain.BracketAge
	case "GENDER", "SEX":
		return domain.BracketGender
	}

	if ageRangePattern.MatchString(b.Name) {
		return domain.BracketAge
	}

	tokens := strings.FieldsFunc(strings.ToLower(b.Name), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, token := range tokens {
		if _, ok := genderTokens[token]; ok {
			return domain.BracketGender
		}
	}

	return domain.BracketUnclassified
}
