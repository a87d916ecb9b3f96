// Package transform cleans and enriches the merged row table: column
// normalization and renaming, missing-value policy, date-range and equality
// filtering, and the derived profit metrics.
package transform

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salescli/internal/config"
	apperrors "salescli/internal/errors"
	"salescli/internal/table"
)

// Column names the transformer requires and derives.
const (
	ColumnRevenue      = "revenue"
	ColumnCost         = "cost"
	ColumnProfit       = "profit"
	ColumnProfitMargin = "profit_margin"
)

var hundred = decimal.NewFromInt(100)

// Transformer applies the cleaning and derivation stages of the pipeline to
// a table, in fixed order.
type Transformer struct {
	logger *slog.Logger
	opts   config.Options
}

// New creates a transformer for the given run options.
func New(logger *slog.Logger, opts config.Options) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{logger: logger, opts: opts}
}

// Apply runs all transformation stages on tbl in place. Missing revenue or
// cost columns and malformed date-range bounds are fatal; a malformed
// transform config or individual filter degrades that feature and continues.
func (tr *Transformer) Apply(ctx context.Context, tbl *table.Table) error {
	tbl.LowercaseColumns()

	tr.applyRenames(ctx, tbl)
	tr.applyMissingPolicy(ctx, tbl)

	if err := tr.applyDateRange(ctx, tbl); err != nil {
		return err
	}
	tr.applyFilters(ctx, tbl)

	if err := deriveProfit(tbl); err != nil {
		return err
	}
	if tr.opts.CalcProfitMargin {
		deriveProfitMargin(tbl)
		tr.logger.DebugContext(ctx, "calculated profit margin")
	}

	return nil
}

// applyRenames loads the optional transform config and renames columns.
// A malformed config file is reported and skipped.
func (tr *Transformer) applyRenames(ctx context.Context, tbl *table.Table) {
	if tr.opts.TransformConfig == "" {
		return
	}

	cfg, err := config.LoadTransformConfig(tr.opts.TransformConfig)
	if err != nil {
		tr.logger.WarnContext(ctx, "skipping transform config",
			slog.String("path", tr.opts.TransformConfig),
			slog.String("error", err.Error()))
		return
	}

	tbl.RenameColumns(cfg.RenameColumns)
	tr.logger.InfoContext(ctx, "applied column renames from transform config",
		slog.Int("rename_count", len(cfg.RenameColumns)))
}

// applyMissingPolicy drops incomplete rows or fills missing cells with the
// configured constant. The two policies are mutually exclusive.
func (tr *Transformer) applyMissingPolicy(ctx context.Context, tbl *table.Table) {
	if tr.opts.DropMissing {
		before := tbl.Len()
		tbl.Filter(tbl.Complete)
		tr.logger.InfoContext(ctx, "dropped rows with missing values",
			slog.Int("dropped", before-tbl.Len()))
		return
	}

	if fill, ok := tr.opts.FillValue(); ok {
		filled := 0
		for i := 0; i < tbl.Len(); i++ {
			for _, col := range tbl.Columns() {
				if tbl.Value(i, col).IsMissing() {
					tbl.Set(i, col, table.Num(fill))
					filled++
				}
			}
		}
		tr.logger.InfoContext(ctx, "filled missing values",
			slog.String("fill_value", fill.String()),
			slog.Int("filled", filled))
	}
}

// applyDateRange filters rows to the inclusive [start, end] date range. It
// runs only when both bounds are configured. Cells that do not parse as
// dates become missing and fall outside any range. An absent date column
// skips the filter with a warning; malformed bounds abort the run.
func (tr *Transformer) applyDateRange(ctx context.Context, tbl *table.Table) error {
	if !tr.opts.DateRange() {
		return nil
	}

	dateCol := strings.ToLower(tr.opts.DateColumn)
	if !tbl.HasColumn(dateCol) {
		tr.logger.WarnContext(ctx, "date column not found; skipping date filtering",
			slog.String("date_column", dateCol))
		return nil
	}

	start, err := time.Parse("2006-01-02", tr.opts.StartDate)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			"incorrect date format, please use YYYY-MM-DD", err)
	}
	end, err := time.Parse("2006-01-02", tr.opts.EndDate)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			"incorrect date format, please use YYYY-MM-DD", err)
	}

	// Convert the column up front so unparsable cells become missing dates.
	for i := 0; i < tbl.Len(); i++ {
		if t, ok := tbl.Value(i, dateCol).AsTime(); ok {
			tbl.Set(i, dateCol, table.Time(t))
		} else {
			tbl.Set(i, dateCol, table.Missing)
		}
	}

	before := tbl.Len()
	tbl.Filter(func(row table.Row) bool {
		t, ok := row[dateCol].AsTime()
		return ok && !t.Before(start) && !t.After(end)
	})

	tr.logger.InfoContext(ctx, "filtered rows by date range",
		slog.String("start", tr.opts.StartDate),
		slog.String("end", tr.opts.EndDate),
		slog.Int("excluded", before-tbl.Len()))
	return nil
}

// applyFilters applies the "column:value" equality filters. Comparison is by
// the cell's string form. A malformed filter or unknown column is reported
// and that filter skipped.
func (tr *Transformer) applyFilters(ctx context.Context, tbl *table.Table) {
	for _, filter := range tr.opts.Filters {
		parts := strings.SplitN(filter, ":", 2)
		if len(parts) != 2 {
			tr.logger.WarnContext(ctx, "skipping malformed filter",
				slog.String("filter", filter))
			continue
		}

		col := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.TrimSpace(parts[1])
		if !tbl.HasColumn(col) {
			tr.logger.WarnContext(ctx, "skipping filter for unknown column",
				slog.String("filter", filter),
				slog.String("column", col))
			continue
		}

		before := tbl.Len()
		tbl.Filter(func(row table.Row) bool {
			return row[col].String() == val
		})
		tr.logger.InfoContext(ctx, "applied filter",
			slog.String("column", col),
			slog.String("value", val),
			slog.Int("excluded", before-tbl.Len()))
	}
}

// deriveProfit adds profit = revenue - cost. Both source columns must exist.
// Rows with non-numeric revenue or cost get a missing profit.
func deriveProfit(tbl *table.Table) error {
	if !tbl.HasColumn(ColumnRevenue) || !tbl.HasColumn(ColumnCost) {
		return apperrors.NewValidationError(
			"input data must contain 'revenue' and 'cost' columns")
	}

	tbl.AddColumn(ColumnProfit)
	for i := 0; i < tbl.Len(); i++ {
		revenue, okR := tbl.Value(i, ColumnRevenue).Decimal()
		cost, okC := tbl.Value(i, ColumnCost).Decimal()
		if okR && okC {
			tbl.Set(i, ColumnProfit, table.Num(revenue.Sub(cost)))
		} else {
			tbl.Set(i, ColumnProfit, table.Missing)
		}
	}
	return nil
}

// deriveProfitMargin adds profit_margin = profit / revenue * 100, with zero
// revenue yielding exactly 0.
func deriveProfitMargin(tbl *table.Table) {
	tbl.AddColumn(ColumnProfitMargin)
	for i := 0; i < tbl.Len(); i++ {
		tbl.Set(i, ColumnProfitMargin, marginOf(
			tbl.Value(i, ColumnProfit),
			tbl.Value(i, ColumnRevenue)))
	}
}

// marginOf computes the margin cell for a profit/revenue pair.
func marginOf(profit, revenue table.Value) table.Value {
	r, okR := revenue.Decimal()
	if okR && r.IsZero() {
		return table.Num(decimal.Zero)
	}
	p, okP := profit.Decimal()
	if !okR || !okP {
		return table.Missing
	}
	return table.Num(p.Mul(hundred).Div(r))
}

// Margin computes an aggregated profit margin with the same zero-revenue
// rule, used for summary and monthly totals.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Mul(hundred).Div(revenue)
}
