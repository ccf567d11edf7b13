package pipeline

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chandana/internal/domain"
)

const UnknownDistrict = "Unknown"

// NormalizeDistrict trims and title-cases a district name. Null or blank
// names become Unknown.
func NormalizeDistrict(raw string, isNull bool) string {
	s := strings.TrimSpace(raw)
	if isNull || s == "" {
		return UnknownDistrict
	}
	return cases.Title(language.Und).String(s)
}

// DistrictDistribution counts records per district, largest first.
func DistrictDistribution(records []domain.TestRecord) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.District]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
