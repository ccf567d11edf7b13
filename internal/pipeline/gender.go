package pipeline

import (
	"strings"

	"chandana/internal/domain"
)

// GenderMapping maps trimmed, upper-cased gender codes to the closed
// vocabulary. Codes missing from the table map to Unknown.
type GenderMapping map[string]domain.Gender

// DefaultGenderMapping is the lookup used by the dashboard. Treat it as
// read-only.
var DefaultGenderMapping = GenderMapping{
	"M":      domain.GenderMale,
	"F":      domain.GenderFemale,
	"MALE":   domain.GenderMale,
	"FEMALE": domain.GenderFemale,
	"NA":     domain.GenderUnknown,
	"":       domain.GenderUnknown,
}

// CleanGenderCode returns the trimmed upper-case form used for lookup.
func CleanGenderCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// StandardizeGender maps raw text to Male, Female or Unknown. Null input is
// passed as isNull and always yields Unknown.
func (m GenderMapping) StandardizeGender(raw string, isNull bool) domain.Gender {
	if isNull {
		return domain.GenderUnknown
	}
	if g, ok := m[CleanGenderCode(raw)]; ok {
		switch g {
		case domain.GenderMale, domain.GenderFemale:
			return g
		}
	}
	return domain.GenderUnknown
}

func StandardizeGender(raw string, isNull bool) domain.Gender {
	return DefaultGenderMapping.StandardizeGender(raw, isNull)
}

type CategoryCount struct {
	Name  string
	Count int
}

// GenderDistribution counts records per standardized gender in vocabulary order.
func GenderDistribution(records []domain.TestRecord) []CategoryCount {
	counts := make(map[domain.Gender]int, len(domain.Genders))
	for _, r := range records {
		counts[r.GenderStandardized]++
	}
	out := make([]CategoryCount, 0, len(domain.Genders))
	for _, g := range domain.Genders {
		out = append(out, CategoryCount{Name: string(g), Count: counts[g]})
	}
	return out
}
