package app

import (
	"strings"
	"testing"
	"time"

	"chandana/internal/domain"
	"chandana/internal/pipeline"
	"chandana/internal/snapshot"
	"chandana/internal/source"
)

func TestFormatSummary(t *testing.T) {
	snap := &snapshot.Snapshot{
		ID:       "snap-1",
		LoadedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		HPLC:     pipeline.BuildHPLC(source.SyntheticHPLC(450, 1), pipeline.Options{}),
		HPOS:     pipeline.BuildHPOS(source.SyntheticHPOS(20, 1), domain.DefaultThresholds),
		Warnings: []string{"HPLC source is not configured; showing synthetic data"},
	}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	got := FormatSummary(snap, 1000, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), now, 2)

	for _, want := range []string{
		"Snapshot snap-1 loaded 2025-03-10 09:00:00",
		"Total HPLC Tests: 450 (+45 this week, estimated)",
		"Total HPOS Tests: 20",
		"Progress: 45.0% of 1000",
		"Completion deadline: 2025-12-31",
		"HPOS ratios: ",
		"Synthetic fallbacks in the last 24h: 2",
		"Warnings:\nHPLC source is not configured; showing synthetic data",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatal("summary should not end with a newline")
	}
}

func TestNewLoaderSkipsUnsetSource(t *testing.T) {
	if l := newLoader("hplc", "  "); l != nil {
		t.Fatalf("expected nil loader for blank source, got %#v", l)
	}
	l := newLoader("hpos", "https://example.test/hpos.csv")
	sl, ok := l.(*source.Loader)
	if !ok || sl.Source != "https://example.test/hpos.csv" {
		t.Fatalf("unexpected loader: %#v", l)
	}
}

func TestDescribeSource(t *testing.T) {
	tests := map[string]string{
		"":                       "synthetic",
		"https://example.test/x": "remote",
		"/data/hplc.csv":         "/data/hplc.csv",
	}
	for in, want := range tests {
		if got := describeSource(in); got != want {
			t.Fatalf("describeSource(%q) = %q, want %q", in, got, want)
		}
	}
}
