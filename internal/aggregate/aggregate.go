// Package aggregate computes the summary record, the optional pivot table,
// and the monthly roll-up from the cleaned row table.
package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"salescli/internal/table"
	"salescli/internal/transform"
)

// Summary is the single-row overall aggregation of the cleaned table.
type Summary struct {
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Profit  decimal.Decimal
	// Margin is computed on the aggregated totals when requested.
	Margin *decimal.Decimal
}

// Summarize aggregates revenue, cost and profit with the given method
// ("sum" or "mean"). When withMargin is set, the margin is derived from the
// aggregated totals, with zero revenue yielding exactly 0.
func Summarize(tbl *table.Table, method string, withMargin bool) Summary {
	s := Summary{
		Revenue: tbl.Aggregate(transform.ColumnRevenue, method),
		Cost:    tbl.Aggregate(transform.ColumnCost, method),
		Profit:  tbl.Aggregate(transform.ColumnProfit, method),
	}
	if withMargin {
		m := transform.Margin(s.Profit, s.Revenue)
		s.Margin = &m
	}
	return s
}

// PivotRow is one (index value, aggregated value) pair of a pivot table.
type PivotRow struct {
	Key   string
	Value decimal.Decimal
}

// Pivot is a table grouped by one column with a second column aggregated.
type Pivot struct {
	Index  string
	Values string
	Rows   []PivotRow
}

// BuildPivot groups tbl by the index column and aggregates the values column
// with the same method as the summary. When either column is missing the
// pivot is omitted (nil) and a warning logged; rows with a missing index are
// excluded from grouping.
func BuildPivot(ctx context.Context, logger *slog.Logger, tbl *table.Table, index, values, method string) *Pivot {
	index = strings.ToLower(index)
	values = strings.ToLower(values)

	if !tbl.HasColumn(index) || !tbl.HasColumn(values) {
		logger.WarnContext(ctx, "pivot table columns not found in data",
			slog.String("index", index),
			slog.String("values", values))
		return nil
	}

	groups := groupRows(tbl, func(row table.Row) (string, bool) {
		v := row[index]
		if v.IsMissing() {
			return "", false
		}
		return v.String(), true
	})

	pivot := &Pivot{Index: index, Values: values}
	for _, g := range groups {
		pivot.Rows = append(pivot.Rows, PivotRow{
			Key:   g.key,
			Value: g.table.Aggregate(values, method),
		})
	}

	logger.InfoContext(ctx, "generated pivot table",
		slog.String("index", index),
		slog.String("values", values),
		slog.Int("group_count", len(pivot.Rows)))
	return pivot
}

// FinalTotalKey labels the synthetic grand-total row of the monthly roll-up.
const FinalTotalKey = "Final Total"

// MonthColumn is the derived month key column ("YYYY-MM").
const MonthColumn = "month"

// MonthlyRow is one row of the monthly roll-up.
type MonthlyRow struct {
	Month   string
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Profit  decimal.Decimal
	Margin  *decimal.Decimal
}

// MonthlyTotals groups the table by calendar month of the date column and
// sums revenue, cost and profit per month, appending a grand-total row
// computed over the entire table. The date column is re-parsed defensively;
// rows without a parseable date are excluded from the monthly groups but
// still count toward the final total. An absent date column yields nil.
func MonthlyTotals(ctx context.Context, logger *slog.Logger, tbl *table.Table, dateColumn string, withMargin bool) []MonthlyRow {
	dateCol := strings.ToLower(dateColumn)
	if !tbl.HasColumn(dateCol) {
		logger.WarnContext(ctx, "date column not found; monthly totals will not be generated",
			slog.String("date_column", dateCol))
		return nil
	}

	// Derive the month key column on the table itself.
	tbl.AddColumn(MonthColumn)
	for i := 0; i < tbl.Len(); i++ {
		if t, ok := tbl.Value(i, dateCol).AsTime(); ok {
			tbl.Set(i, MonthColumn, table.Str(t.Format("2006-01")))
		} else {
			tbl.Set(i, MonthColumn, table.Missing)
		}
	}

	groups := groupRows(tbl, func(row table.Row) (string, bool) {
		v := row[MonthColumn]
		if v.IsMissing() {
			return "", false
		}
		return v.String(), true
	})

	var rows []MonthlyRow
	for _, g := range groups {
		rows = append(rows, monthlyRow(g.key, g.table, withMargin))
	}
	rows = append(rows, monthlyRow(FinalTotalKey, tbl, withMargin))

	logger.InfoContext(ctx, "generated monthly totals",
		slog.Int("month_count", len(rows)-1))
	return rows
}

// monthlyRow sums one month group (or the whole table for the final total).
func monthlyRow(key string, tbl *table.Table, withMargin bool) MonthlyRow {
	row := MonthlyRow{
		Month:   key,
		Revenue: tbl.Sum(transform.ColumnRevenue),
		Cost:    tbl.Sum(transform.ColumnCost),
		Profit:  tbl.Sum(transform.ColumnProfit),
	}
	if withMargin {
		m := transform.Margin(row.Profit, row.Revenue)
		row.Margin = &m
	}
	return row
}

// group is a sub-table of rows sharing a key.
type group struct {
	key   string
	table *table.Table
}

// groupRows partitions the table's rows by key, returning groups sorted by
// key ascending. Rows for which keyOf reports false are skipped.
func groupRows(tbl *table.Table, keyOf func(table.Row) (string, bool)) []group {
	byKey := make(map[string]*table.Table)
	for _, row := range tbl.Rows() {
		key, ok := keyOf(row)
		if !ok {
			continue
		}
		g, exists := byKey[key]
		if !exists {
			g = table.New(tbl.Columns()...)
			byKey[key] = g
		}
		g.Append(row)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]group, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, group{key: key, table: byKey[key]})
	}
	return groups
}
