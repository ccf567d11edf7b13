package pipeline

import (
	"math"
	"testing"

	"chandana/internal/domain"
)

func TestEvaluateSampleThresholdEdges(t *testing.T) {
	th := domain.Thresholds{Low: 0.38, High: 0.42}
	tests := []struct {
		raw  string
		want domain.Band
	}{
		{"0.38", domain.BandInRange},
		{"0.379999", domain.BandBelow},
		{"0.42", domain.BandInRange},
		{"0.4201", domain.BandAbove},
		{"abc", domain.BandInvalid},
		{"", domain.BandInvalid},
		{" 0.40 ", domain.BandInRange},
		{"NaN", domain.BandInvalid},
		{"inf", domain.BandInvalid},
		{"-Infinity", domain.BandInvalid},
		{"1e400", domain.BandInvalid},
		{"0x1p-2", domain.BandInvalid},
		{"0_4", domain.BandInvalid},
		{"4.1e-1", domain.BandInRange},
		{".40", domain.BandInRange},
	}
	for _, tt := range tests {
		if got := EvaluateSample(tt.raw, false, th).Band; got != tt.want {
			t.Errorf("EvaluateSample(%q) band = %q, want %q", tt.raw, got, tt.want)
		}
	}
	if got := EvaluateSample("0.40", true, th).Band; got != domain.BandInvalid {
		t.Errorf("null sample band = %q, want invalid", got)
	}
}

func TestEvaluateRatiosCountsAreExhaustive(t *testing.T) {
	th := domain.DefaultThresholds
	raws := []string{"0.1", "0.39", "0.40", "0.5", "x", "0.38", "0.9", "", "0.42"}
	samples := make([]domain.RatioSample, len(raws))
	for i, r := range raws {
		samples[i] = EvaluateSample(r, false, th)
	}
	s := EvaluateRatios(samples)
	if s.Below+s.InRange+s.Above+s.Invalid != s.Total {
		t.Fatalf("bands do not sum to total: %+v", s)
	}
	if s.Total != len(raws) {
		t.Fatalf("total = %d, want %d", s.Total, len(raws))
	}
	if s.Below != 1 || s.InRange != 4 || s.Above != 2 || s.Invalid != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if want := 4.0 / 7.0; math.Abs(s.InRangeFraction-want) > 1e-9 {
		t.Fatalf("in-range fraction = %f, want %f", s.InRangeFraction, want)
	}
	if s.Min != 0.1 || s.Max != 0.9 {
		t.Fatalf("min/max = %f/%f, want 0.1/0.9", s.Min, s.Max)
	}
}

func TestEvaluateRatiosNoValidSamples(t *testing.T) {
	samples := []domain.RatioSample{
		EvaluateSample("a", false, domain.DefaultThresholds),
		EvaluateSample("", true, domain.DefaultThresholds),
	}
	s := EvaluateRatios(samples)
	if s.Invalid != 2 || s.InRangeFraction != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestValidRatiosKeepsOrder(t *testing.T) {
	samples := []domain.RatioSample{
		{Ratio: 0.4, Valid: true}, {Band: domain.BandInvalid}, {Ratio: 0.3, Valid: true},
	}
	got := ValidRatios(samples)
	if len(got) != 2 || got[0] != 0.4 || got[1] != 0.3 {
		t.Fatalf("got %v", got)
	}
}

func TestEvaluateRatiosStaysFiniteWithInfiniteText(t *testing.T) {
	th := domain.DefaultThresholds
	samples := []domain.RatioSample{
		EvaluateSample("0.40", false, th),
		EvaluateSample("inf", false, th),
	}
	s := EvaluateRatios(samples)
	if s.Invalid != 1 || s.InRange != 1 {
		t.Fatalf("got invalid=%d in-range=%d, want 1 and 1", s.Invalid, s.InRange)
	}
	for name, v := range map[string]float64{"mean": s.Mean, "std": s.StdDev, "min": s.Min, "max": s.Max} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("%s = %v, want a finite value", name, v)
		}
	}
}
