package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"chandana/internal/domain"
)

// HPLC is the cleaned laboratory dataset.
type HPLC struct {
	Records         []domain.TestRecord
	Groups          []domain.AgeGroup
	HasResultColumn bool
	HasDistrict     bool
	Dated           bool
	// Table is the normalized table offered for export.
	Table    domain.Table
	Warnings []string
}

type Options struct {
	Genders    GenderMapping
	DateColumn string
	Location   *time.Location
}

// BuildHPLC cleans the laboratory table. Missing columns degrade the output
// and are reported in Warnings; nothing here fails.
func BuildHPLC(raw domain.Table, opts Options) HPLC {
	genders := opts.Genders
	if genders == nil {
		genders = DefaultGenderMapping
	}
	table := raw
	if raw.HasColumn(domain.ColSerial) {
		table = raw.Project(domain.HPLCColumns)
	}

	h := HPLC{
		HasResultColumn: table.HasColumn(domain.ColResult),
		HasDistrict:     table.HasColumn(domain.ColDistrict),
	}
	for _, col := range []string{domain.ColAge, domain.ColGender} {
		if !table.HasColumn(col) {
			h.Warnings = append(h.Warnings, fmt.Sprintf("HPLC column %q not found; derived values use defaults", col))
		}
	}
	if !h.HasResultColumn {
		h.Warnings = append(h.Warnings, fmt.Sprintf("HPLC column %q not found; signed count equals total", domain.ColResult))
	}

	h.Records = make([]domain.TestRecord, table.Len())
	for i := range h.Records {
		result := table.Get(i, domain.ColResult)
		gender := table.Get(i, domain.ColGender)
		district := table.Get(i, domain.ColDistrict)
		age := table.Get(i, domain.ColAge)
		r := domain.TestRecord{
			ID:         table.Get(i, domain.ColSerial).Value,
			SickleID:   table.Get(i, domain.ColSickleID).Value,
			GenderText: gender.Value,
			Result:     result.Value,
			HasResult:  !result.Null,
			TestStatus: table.Get(i, domain.ColTestStatus).Value,

			GenderStandardized: genders.StandardizeGender(gender.Value, gender.Null),
		}
		if !age.Null {
			r.AgeText = age.Value
		}
		if h.HasDistrict {
			r.District = NormalizeDistrict(district.Value, district.Null)
		}
		h.Records[i] = r
	}
	h.Groups = NormalizeAges(h.Records)

	if opts.DateColumn != "" {
		h.Dated = applyDates(table, h.Records, opts.DateColumn, opts.Location)
		if !h.Dated {
			h.Warnings = append(h.Warnings, fmt.Sprintf("date column %q missing or unparseable; weekly delta is estimated as 10%% of total", opts.DateColumn))
		}
	}

	h.Table = normalizedTable(table, h)
	return h
}

func applyDates(table domain.Table, records []domain.TestRecord, column string, loc *time.Location) bool {
	if !table.HasColumn(column) {
		return false
	}
	dates := make([]time.Time, len(records))
	for i := range records {
		c := table.Get(i, column)
		if c.Null {
			return false
		}
		t, ok := ParseDate(c.Value, loc)
		if !ok {
			return false
		}
		dates[i] = t
	}
	for i := range records {
		records[i].TestedAt = dates[i]
	}
	return true
}

func normalizedTable(table domain.Table, h HPLC) domain.Table {
	out := domain.Table{Header: append(append([]string(nil), table.Header...),
		domain.ColAgeInYears, domain.ColAgeGroup, domain.ColGenderStandardized)}
	genderIdx := table.ColumnIndex(domain.ColGender)
	districtIdx := table.ColumnIndex(domain.ColDistrict)
	for i, row := range table.Rows {
		cells := padRow(row, len(table.Header), len(out.Header))
		r := h.Records[i]
		if genderIdx >= 0 && genderIdx < len(cells) && !cells[genderIdx].Null {
			cells[genderIdx] = domain.Cell{Value: CleanGenderCode(cells[genderIdx].Value)}
		}
		if districtIdx >= 0 && districtIdx < len(cells) {
			cells[districtIdx] = domain.Cell{Value: r.District}
		}
		cells = append(cells,
			domain.Cell{Value: strconv.Itoa(r.AgeInYears)},
			domain.Cell{Value: r.AgeGroup.Label()},
			domain.Cell{Value: string(r.GenderStandardized)},
		)
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// HPOS is the evaluated quality-control dataset.
type HPOS struct {
	Samples        []domain.RatioSample
	Summary        QCSummary
	HasRatioColumn bool
	Table          domain.Table
	Warnings       []string
}

// BuildHPOS classifies every device ratio against t.
func BuildHPOS(raw domain.Table, t domain.Thresholds) HPOS {
	h := HPOS{HasRatioColumn: raw.HasColumn(domain.ColDeviceRatio), Table: raw}
	if !h.HasRatioColumn {
		h.Warnings = append(h.Warnings, "Device ratio data not found in HPOS dataset")
		return h
	}
	h.Samples = make([]domain.RatioSample, raw.Len())
	for i := range h.Samples {
		c := raw.Get(i, domain.ColDeviceRatio)
		h.Samples[i] = EvaluateSample(c.Value, c.Null, t)
	}
	h.Summary = EvaluateRatios(h.Samples)

	switch {
	case h.Summary.Valid() == 0:
		h.Warnings = append(h.Warnings, "No valid numeric device ratio data found")
	case h.Summary.Invalid > 0:
		h.Warnings = append(h.Warnings, fmt.Sprintf(
			"Data Quality: %d valid samples out of %d total samples. %d samples had invalid ratio values.",
			h.Summary.Valid(), h.Summary.Total, h.Summary.Invalid))
	}

	h.Table = domain.Table{Header: append(append([]string(nil), raw.Header...), domain.ColRatioNumeric)}
	for i, row := range raw.Rows {
		cells := padRow(row, len(raw.Header), len(raw.Header)+1)
		numeric := domain.Cell{Null: true}
		if s := h.Samples[i]; s.Valid {
			numeric = domain.Cell{Value: strconv.FormatFloat(s.Ratio, 'f', -1, 64)}
		}
		h.Table.Rows = append(h.Table.Rows, append(cells, numeric))
	}
	return h
}

// padRow copies row into a slice of width n, filling short rows with nulls.
func padRow(row []domain.Cell, n, capacity int) []domain.Cell {
	cells := make([]domain.Cell, n, capacity)
	for i := range cells {
		if i < len(row) {
			cells[i] = row[i]
		} else {
			cells[i] = domain.Cell{Null: true}
		}
	}
	return cells
}
