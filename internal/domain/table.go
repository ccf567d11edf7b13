package domain

import "strings"

// Cell is one field of an ingested row. Null is set for missing values and
// for the spreadsheet null tokens listed in NullTokens.
type Cell struct {
	Value string
	Null  bool
}

// Table is a raw tabular dataset in source column order.
type Table struct {
	Header []string
	Rows   [][]Cell
}

var NullTokens = map[string]bool{
	"":       true,
	"NA":     true,
	"N/A":    true,
	"n/a":    true,
	"NaN":    true,
	"nan":    true,
	"-NaN":   true,
	"-nan":   true,
	"null":   true,
	"NULL":   true,
	"None":   true,
	"#N/A":   true,
	"#NA":    true,
	"<NA>":   true,
	"1.#IND": true,
}

// NewCell builds a cell from raw text, marking null tokens.
func NewCell(raw string) Cell {
	if NullTokens[strings.TrimSpace(raw)] {
		return Cell{Value: raw, Null: true}
	}
	return Cell{Value: raw}
}

func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the index of name in the header, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Get returns the cell at row i for the named column. Missing columns and
// short rows read as null.
func (t Table) Get(i int, name string) Cell {
	idx := t.ColumnIndex(name)
	if idx < 0 || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return Cell{Null: true}
	}
	return t.Rows[i][idx]
}

// Project keeps only the named columns, in the given order. Columns absent
// from the table are filled with nulls.
func (t Table) Project(columns []string) Table {
	out := Table{Header: append([]string(nil), columns...)}
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.ColumnIndex(c)
	}
	for _, row := range t.Rows {
		projected := make([]Cell, len(columns))
		for i, j := range idx {
			if j < 0 || j >= len(row) {
				projected[i] = Cell{Null: true}
				continue
			}
			projected[i] = row[j]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// DropEmptyRows removes rows in which every cell is null.
func (t Table) DropEmptyRows() Table {
	out := Table{Header: t.Header}
	for _, row := range t.Rows {
		empty := true
		for _, c := range row {
			if !c.Null {
				empty = false
				break
			}
		}
		if !empty {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Head returns at most n leading rows.
func (t Table) Head(n int) Table {
	if n >= len(t.Rows) {
		return t
	}
	return Table{Header: t.Header, Rows: t.Rows[:n]}
}
