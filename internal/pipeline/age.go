package pipeline

import (
	"regexp"
	"strings"

	"chandana/internal/domain"
)

var ageUnitRe = regexp.MustCompile(`(?i)\s*yrs\s*`)

// MaxAge is the largest age accepted; anything above it is treated as a
// data entry error.
const MaxAge = 150

// ParseAge converts free-text age such as "12 yrs" or "7YRS" to whole years.
// Anything that does not parse as a decimal number in [0, MaxAge] yields 0.
func ParseAge(raw string) int {
	s := strings.TrimSpace(ageUnitRe.ReplaceAllString(raw, ""))
	if s == "" {
		return 0
	}
	v, ok := parseDecimal(s)
	if !ok || v < 0 || v >= MaxAge+1 {
		return 0
	}
	return int(v)
}

// AgeGroups returns the contiguous 5-year groups spanning the observed ages.
// Edges run from floor(min/5)*5 in steps of 5 while below (floor(max/5)+2)*5,
// and each pair of consecutive edges forms one group. An empty input is
// treated as a single age of 0, which yields the lone group 0-4. Ages are
// clamped to [0, MaxAge] so the group count stays bounded.
func AgeGroups(ages []int) []domain.AgeGroup {
	minAge, maxAge := 0, 0
	for i, a := range ages {
		a = min(max(a, 0), MaxAge)
		if i == 0 || a < minAge {
			minAge = a
		}
		if i == 0 || a > maxAge {
			maxAge = a
		}
	}
	lo := floorDiv(minAge, domain.AgeGroupWidth) * domain.AgeGroupWidth
	hi := (floorDiv(maxAge, domain.AgeGroupWidth) + 2) * domain.AgeGroupWidth

	var edges []int
	for e := lo; e < hi; e += domain.AgeGroupWidth {
		edges = append(edges, e)
	}
	groups := make([]domain.AgeGroup, 0, len(edges))
	for i := 0; i+1 < len(edges); i++ {
		groups = append(groups, domain.AgeGroup{Lo: edges[i]})
	}
	return groups
}

// AssignAgeGroup finds the group containing age.
func AssignAgeGroup(groups []domain.AgeGroup, age int) (domain.AgeGroup, bool) {
	for _, g := range groups {
		if g.Contains(age) {
			return g, true
		}
	}
	return domain.AgeGroup{}, false
}

// NormalizeAges fills AgeInYears and AgeGroup on every record and returns
// the group set used.
func NormalizeAges(records []domain.TestRecord) []domain.AgeGroup {
	ages := make([]int, len(records))
	for i := range records {
		records[i].AgeInYears = ParseAge(records[i].AgeText)
		ages[i] = records[i].AgeInYears
	}
	groups := AgeGroups(ages)
	for i := range records {
		if g, ok := AssignAgeGroup(groups, records[i].AgeInYears); ok {
			records[i].AgeGroup = g
		}
	}
	return groups
}

type GroupCount struct {
	Label string
	Count int
}

// AgeDistribution counts records per group in group order, keeping empty groups.
func AgeDistribution(groups []domain.AgeGroup, records []domain.TestRecord) []GroupCount {
	out := make([]GroupCount, len(groups))
	index := make(map[int]int, len(groups))
	for i, g := range groups {
		out[i] = GroupCount{Label: g.Label()}
		index[g.Lo] = i
	}
	for _, r := range records {
		if i, ok := index[r.AgeGroup.Lo]; ok && r.AgeGroup.Contains(r.AgeInYears) {
			out[i].Count++
		}
	}
	return out
}

type HistogramBin struct {
	Lo    float64
	Hi    float64
	Count int
}

// AgeHistogram splits [min, max] into nbins equal-width bins. The last bin is
// closed on the right so the maximum age is counted.
func AgeHistogram(ages []int, nbins int) []HistogramBin {
	if len(ages) == 0 || nbins < 1 {
		return nil
	}
	minAge, maxAge := ages[0], ages[0]
	for _, a := range ages[1:] {
		minAge = min(minAge, a)
		maxAge = max(maxAge, a)
	}
	lo, hi := float64(minAge), float64(maxAge)
	if hi == lo {
		return []HistogramBin{{Lo: lo, Hi: lo + 1, Count: len(ages)}}
	}
	width := (hi - lo) / float64(nbins)
	bins := make([]HistogramBin, nbins)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	for _, a := range ages {
		i := int((float64(a) - lo) / width)
		if i >= nbins {
			i = nbins - 1
		}
		bins[i].Count++
	}
	return bins
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
