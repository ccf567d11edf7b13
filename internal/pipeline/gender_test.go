package pipeline

import (
	"testing"

	"chandana/internal/domain"
)

func TestStandardizeGender(t *testing.T) {
	tests := []struct {
		raw    string
		isNull bool
		want   domain.Gender
	}{
		{"M", false, domain.GenderMale},
		{"F", false, domain.GenderFemale},
		{"Male", false, domain.GenderMale},
		{"Female", false, domain.GenderFemale},
		{"MALE", false, domain.GenderMale},
		{"FEMALE", false, domain.GenderFemale},
		{" m ", false, domain.GenderMale},
		{"", false, domain.GenderUnknown},
		{"NA", false, domain.GenderUnknown},
		{"", true, domain.GenderUnknown},
		{"unexpected-code", false, domain.GenderUnknown},
		{"X", false, domain.GenderUnknown},
	}
	for _, tt := range tests {
		if got := StandardizeGender(tt.raw, tt.isNull); got != tt.want {
			t.Errorf("StandardizeGender(%q, %v) = %q, want %q", tt.raw, tt.isNull, got, tt.want)
		}
	}
}

func TestStandardizeGenderClosedVocabulary(t *testing.T) {
	m := GenderMapping{"W": domain.Gender("Woman")}
	if got := m.StandardizeGender("W", false); got != domain.GenderUnknown {
		t.Fatalf("out-of-vocabulary mapping leaked %q", got)
	}
}

func TestGenderDistributionOrder(t *testing.T) {
	records := []domain.TestRecord{
		{GenderStandardized: domain.GenderFemale},
		{GenderStandardized: domain.GenderFemale},
		{GenderStandardized: domain.GenderUnknown},
	}
	got := GenderDistribution(records)
	want := []CategoryCount{{"Male", 0}, {"Female", 2}, {"Unknown", 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeDistrict(t *testing.T) {
	tests := []struct {
		raw    string
		isNull bool
		want   string
	}{
		{"  north goa ", false, "North Goa"},
		{"SOUTH GOA", false, "South Goa"},
		{"", true, "Unknown"},
		{"   ", false, "Unknown"},
	}
	for _, tt := range tests {
		if got := NormalizeDistrict(tt.raw, tt.isNull); got != tt.want {
			t.Errorf("NormalizeDistrict(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDistrictDistributionSorted(t *testing.T) {
	records := []domain.TestRecord{
		{District: "Bastar"}, {District: "Raipur"}, {District: "Raipur"}, {District: "Durg"},
	}
	got := DistrictDistribution(records)
	want := []CategoryCount{{"Raipur", 2}, {"Bastar", 1}, {"Durg", 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
