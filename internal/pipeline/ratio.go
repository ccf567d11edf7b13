package pipeline

import (
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"chandana/internal/domain"
)

// ParseRatio parses a device ratio. ok is false for null, blank, infinite,
// NaN or non-decimal text.
func ParseRatio(raw string, isNull bool) (float64, bool) {
	if isNull {
		return 0, false
	}
	return parseDecimal(strings.TrimSpace(raw))
}

// Classify places a parsed ratio in a band. Both thresholds are inclusive.
func Classify(v float64, t domain.Thresholds) domain.Band {
	switch {
	case v < t.Low:
		return domain.BandBelow
	case v > t.High:
		return domain.BandAbove
	default:
		return domain.BandInRange
	}
}

// EvaluateSample parses and classifies one raw ratio.
func EvaluateSample(raw string, isNull bool, t domain.Thresholds) domain.RatioSample {
	s := domain.RatioSample{RatioText: raw}
	v, ok := ParseRatio(raw, isNull)
	if !ok {
		s.Band = domain.BandInvalid
		return s
	}
	s.Ratio = v
	s.Valid = true
	s.Band = Classify(v, t)
	return s
}

type QCSummary struct {
	Total   int
	Below   int
	InRange int
	Above   int
	Invalid int

	// InRangeFraction is InRange over valid samples; 0 with no valid samples.
	InRangeFraction float64

	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func (s QCSummary) Valid() int {
	return s.Total - s.Invalid
}

// EvaluateRatios tallies samples by band and describes the valid ratios.
func EvaluateRatios(samples []domain.RatioSample) QCSummary {
	sum := QCSummary{Total: len(samples)}
	var valid []float64
	for _, s := range samples {
		switch s.Band {
		case domain.BandBelow:
			sum.Below++
		case domain.BandInRange:
			sum.InRange++
		case domain.BandAbove:
			sum.Above++
		default:
			sum.Invalid++
			continue
		}
		valid = append(valid, s.Ratio)
	}
	if len(valid) == 0 {
		return sum
	}
	sum.InRangeFraction = float64(sum.InRange) / float64(len(valid))
	sum.Mean = stat.Mean(valid, nil)
	if len(valid) > 1 {
		sum.StdDev = stat.StdDev(valid, nil)
	}
	sum.Min = floats.Min(valid)
	sum.Max = floats.Max(valid)
	return sum
}

// ValidRatios returns the parsed ratios in sample order, skipping invalid ones.
func ValidRatios(samples []domain.RatioSample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Valid {
			out = append(out, s.Ratio)
		}
	}
	return out
}
