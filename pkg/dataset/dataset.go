// Package dataset holds the in-memory tabular model and the loader
// that populates it from CSV sources. Datasets are immutable once
// built; everything downstream treats them as read-only.
package dataset

import (
	"strconv"
	"time"
)

// Kind classifies the values observed in a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindText        Kind = "text"
	KindCategorical Kind = "categorical"
)

// Column is a named column with its inferred value kind.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Dataset is an immutable table: ordered columns, ordered rows of raw
// string cells, plus load provenance. Rows are rectangular — every
// row has exactly len(Columns) cells.
type Dataset struct {
	Name        string
	Columns     []Column
	Rows        [][]string
	Fingerprint string
	LoadedAt    time.Time
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnIndex returns the index of the column with the given name, or
// -1 if absent. Matching is exact and case-sensitive.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnKind returns the kind of the column at idx.
func (d *Dataset) ColumnKind(idx int) Kind {
	return d.Columns[idx].Kind
}

// Cell returns the raw cell value at (row, col).
func (d *Dataset) Cell(row, col int) string {
	return d.Rows[row][col]
}

// Float parses the cell at (row, col) as a float. The second return
// is false for empty or unparseable cells.
func (d *Dataset) Float(row, col int) (float64, bool) {
	s := d.Rows[row][col]
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Head returns up to n leading rows.
func (d *Dataset) Head(n int) [][]string {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}
