package app

import (
	"fmt"
	"strings"
	"time"

	"chandana/internal/snapshot"
)

// FormatSummary renders the headline metrics of a snapshot as plain text.
func FormatSummary(snap *snapshot.Snapshot, target int, deadline, now time.Time, fallbacks int) string {
	sum := snap.Summary(target, now)

	var b strings.Builder
	fmt.Fprintf(&b, "Snapshot %s loaded %s\n", snap.ID, snap.LoadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total HPLC Tests: %d (+%d this week", sum.TotalHPLC, sum.WeeklyDelta)
	if !sum.WeeklyExact {
		b.WriteString(", estimated")
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "Total HPOS Tests: %d\n", sum.TotalHPOS)
	fmt.Fprintf(&b, "Progress: %.1f%% of %d\n", sum.ProgressPct, sum.Target)
	fmt.Fprintf(&b, "Signed HPLC Tests: %d\n", sum.Signed)
	if !deadline.IsZero() {
		fmt.Fprintf(&b, "Completion deadline: %s\n", deadline.Format("2006-01-02"))
	}
	if snap.HPOS.HasRatioColumn && snap.HPOS.Summary.Valid() > 0 {
		qc := snap.HPOS.Summary
		fmt.Fprintf(&b, "HPOS ratios: %d below, %d in range, %d above, %d invalid (mean %.4f)\n",
			qc.Below, qc.InRange, qc.Above, qc.Invalid, qc.Mean)
	}
	if fallbacks > 0 {
		fmt.Fprintf(&b, "Synthetic fallbacks in the last 24h: %d\n", fallbacks)
	}
	if len(snap.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings:\n%s\n", strings.Join(snap.Warnings, "\n"))
	}
	return strings.TrimRight(b.String(), "\n")
}
