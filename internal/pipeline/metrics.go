package pipeline

import (
	"math"
	"strings"
	"time"

	"chandana/internal/domain"
)

const (
	weeklyWindow        = 7 * 24 * time.Hour
	weeklyFallbackShare = 0.10
)

// DateLayouts are tried in order when reading the optional test date column.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
}

// ParseDate reads a timestamp using DateLayouts, in loc for zone-less layouts.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Signed counts records with a non-null result.
func Signed(records []domain.TestRecord) int {
	n := 0
	for _, r := range records {
		if r.HasResult {
			n++
		}
	}
	return n
}

// Progress is total/target as a percentage, capped at 100.
func Progress(total, target int) float64 {
	if target <= 0 {
		return 100
	}
	return math.Min(float64(total)/float64(target)*100, 100)
}

// WeeklyDelta counts rows dated within the trailing 7 days of now. dated
// reports whether every record carries a parsed date; without that the
// estimate falls back to 10% of the total, truncated.
func WeeklyDelta(records []domain.TestRecord, dated bool, now time.Time) int {
	if !dated || len(records) == 0 {
		return int(float64(len(records)) * weeklyFallbackShare)
	}
	cutoff := now.Add(-weeklyWindow)
	n := 0
	for _, r := range records {
		if r.TestedAt.IsZero() {
			return int(float64(len(records)) * weeklyFallbackShare)
		}
		if !r.TestedAt.Before(cutoff) {
			n++
		}
	}
	return n
}

type Summary struct {
	TotalHPLC   int
	TotalHPOS   int
	Signed      int
	Target      int
	ProgressPct float64
	WeeklyDelta int
	WeeklyExact bool
}

// Summarize computes the overview figures.
func Summarize(h HPLC, hposRows, target int, now time.Time) Summary {
	s := Summary{
		TotalHPLC:   len(h.Records),
		TotalHPOS:   hposRows,
		Target:      target,
		ProgressPct: Progress(len(h.Records), target),
		WeeklyDelta: WeeklyDelta(h.Records, h.Dated, now),
		WeeklyExact: h.Dated && len(h.Records) > 0,
	}
	if h.HasResultColumn {
		s.Signed = Signed(h.Records)
	} else {
		s.Signed = s.TotalHPLC
	}
	return s
}
