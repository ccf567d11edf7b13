package domain

import (
	"fmt"
	"time"
)

// HPLC source columns.
const (
	ColSerial     = "SL No."
	ColSickleID   = "Sickle Id"
	ColAge        = "Age"
	ColGender     = "Gender"
	ColDistrict   = "District"
	ColResult     = "Pathology stated HPLC RESULT"
	ColTestStatus = "Lab_HPOS_Test"

	// HPOS source column.
	ColDeviceRatio = "deviceRatio"

	// Derived columns added to exports.
	ColAgeInYears         = "age_in_years"
	ColAgeGroup           = "age_group"
	ColGenderStandardized = "Gender_standardized"
	ColRatioNumeric       = "deviceRatio_numeric"
)

// HPLCColumns is the projection applied when the HPLC source carries the
// expected layout.
var HPLCColumns = []string{
	ColSerial, ColSickleID, ColAge, ColGender, ColDistrict, ColResult, ColTestStatus,
}

type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// Genders lists the closed vocabulary in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderUnknown}

// AgeGroup is the half-open interval [Lo, Lo+5).
type AgeGroup struct {
	Lo int
}

const AgeGroupWidth = 5

func (g AgeGroup) Hi() int {
	return g.Lo + AgeGroupWidth
}

func (g AgeGroup) Contains(age int) bool {
	return age >= g.Lo && age < g.Hi()
}

func (g AgeGroup) Label() string {
	return fmt.Sprintf("%d-%d", g.Lo, g.Lo+AgeGroupWidth-1)
}

// TestRecord is one cleaned HPLC row.
type TestRecord struct {
	ID         string
	SickleID   string
	AgeText    string
	GenderText string
	District   string
	Result     string
	HasResult  bool
	TestStatus string
	TestedAt   time.Time // zero unless a date column was configured and parsed

	AgeInYears         int
	AgeGroup           AgeGroup
	GenderStandardized Gender
}

type Band string

const (
	BandBelow   Band = "below"
	BandInRange Band = "in-range"
	BandAbove   Band = "above"
	BandInvalid Band = "invalid"
)

// RatioSample is one HPOS row.
type RatioSample struct {
	RatioText string
	Ratio     float64
	Valid     bool
	Band      Band
}

// Thresholds is the accepted band for device ratios, inclusive on both ends.
type Thresholds struct {
	Low  float64
	High float64
}

var DefaultThresholds = Thresholds{Low: 0.38, High: 0.42}

func (t Thresholds) Validate() error {
	if t.Low >= t.High {
		return fmt.Errorf("low threshold %.4f must be below high threshold %.4f", t.Low, t.High)
	}
	return nil
}
