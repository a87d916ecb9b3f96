// Package table implements the in-memory row table the reporting pipeline
// operates on: an ordered set of columns over an ordered sequence of rows,
// with cells holding numbers, strings, dates, or a missing marker.
package table

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Row maps lower-cased column names to cell values. An absent key is
// equivalent to a missing value.
type Row map[string]Value

// Table is an ordered collection of rows sharing a column set. Columns keep
// first-seen order; derived columns are appended at the end.
type Table struct {
	cols []string
	rows []Row
}

// New creates an empty table with the given columns.
func New(cols ...string) *Table {
	t := &Table{}
	for _, c := range cols {
		t.AddColumn(c)
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.cols
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.cols {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn registers a column if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.cols = append(t.cols, name)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the underlying rows in order.
func (t *Table) Rows() []Row {
	return t.rows
}

// Append adds a row, registering any columns the table has not seen yet.
func (t *Table) Append(row Row) {
	for col := range row {
		t.AddColumn(col)
	}
	t.rows = append(t.rows, row)
}

// AppendOrdered adds a row whose columns are already known, preserving the
// order in which the caller lists new columns.
func (t *Table) AppendOrdered(cols []string, row Row) {
	for _, col := range cols {
		t.AddColumn(col)
	}
	t.rows = append(t.rows, row)
}

// AppendTable concatenates another table, unioning its column set.
func (t *Table) AppendTable(other *Table) {
	for _, col := range other.cols {
		t.AddColumn(col)
	}
	t.rows = append(t.rows, other.rows...)
}

// Value returns the cell at row i, column col. Absent cells are missing.
func (t *Table) Value(i int, col string) Value {
	if v, ok := t.rows[i][col]; ok {
		return v
	}
	return Missing
}

// Set stores a cell at row i, registering the column if needed.
func (t *Table) Set(i int, col string, v Value) {
	t.AddColumn(col)
	t.rows[i][col] = v
}

// SetAll stores the same value in the named column of every row.
func (t *Table) SetAll(col string, v Value) {
	t.AddColumn(col)
	for _, row := range t.rows {
		row[col] = v
	}
}

// LowercaseColumns normalizes every column name to lower case.
func (t *Table) LowercaseColumns() {
	mapping := make(map[string]string, len(t.cols))
	for _, c := range t.cols {
		if lower := strings.ToLower(c); lower != c {
			mapping[c] = lower
		}
	}
	t.RenameColumns(mapping)
}

// RenameColumns renames columns per the old-name to new-name mapping.
// Unknown old names are ignored.
func (t *Table) RenameColumns(mapping map[string]string) {
	if len(mapping) == 0 {
		return
	}
	for i, c := range t.cols {
		if newName, ok := mapping[c]; ok {
			t.cols[i] = newName
		}
	}
	for _, row := range t.rows {
		for old, newName := range mapping {
			if v, ok := row[old]; ok {
				delete(row, old)
				row[newName] = v
			}
		}
	}
}

// Filter keeps only the rows for which keep returns true, in place.
func (t *Table) Filter(keep func(Row) bool) {
	filtered := t.rows[:0]
	for _, row := range t.rows {
		if keep(row) {
			filtered = append(filtered, row)
		}
	}
	t.rows = filtered
}

// Complete reports whether the row has a non-missing value in every table
// column.
func (t *Table) Complete(row Row) bool {
	for _, col := range t.cols {
		if v, ok := row[col]; !ok || v.IsMissing() {
			return false
		}
	}
	return true
}

// Sum adds up the numeric cells of a column. Missing and non-numeric cells
// are skipped.
func (t *Table) Sum(col string) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range t.rows {
		if d, ok := row[col].Decimal(); ok {
			sum = sum.Add(d)
		}
	}
	return sum
}

// Mean computes the arithmetic mean over the numeric cells of a column. An
// empty column yields zero.
func (t *Table) Mean(col string) decimal.Decimal {
	sum := decimal.Zero
	count := int64(0)
	for _, row := range t.rows {
		if d, ok := row[col].Decimal(); ok {
			sum = sum.Add(d)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count))
}

// Aggregate applies the named aggregation method ("sum" or "mean") to a
// column.
func (t *Table) Aggregate(col, method string) decimal.Decimal {
	if method == "mean" {
		return t.Mean(col)
	}
	return t.Sum(col)
}
