// Package exporter serializes the pipeline's results: one workbook with a
// sheet per table, or a set of flat CSV files sharing a base name.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"salescli/internal/aggregate"
	"salescli/internal/config"
	apperrors "salescli/internal/errors"
	"salescli/internal/table"
)

// Sheet names of the workbook output.
const (
	SheetCleaned = "Cleaned Data"
	SheetSummary = "Summary Report"
	SheetPivot   = "Pivot Table"
	SheetMonthly = "Monthly Totals"
)

// File suffixes of the flat-file output.
const (
	suffixCleaned = "_cleaned.csv"
	suffixSummary = "_summary.csv"
	suffixPivot   = "_pivot.csv"
	suffixMonthly = "_monthly_totals.csv"
)

// Report bundles everything the writer serializes. Pivot and Monthly are
// optional; a nil pivot or empty monthly slice is simply omitted.
type Report struct {
	Cleaned *table.Table
	Summary aggregate.Summary
	Pivot   *aggregate.Pivot
	Monthly []aggregate.MonthlyRow
}

// Writer serializes reports.
type Writer struct {
	logger *slog.Logger
	csv    *CSVWriter
}

// NewWriter creates a report writer.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger, csv: NewCSVWriter()}
}

// Save writes the report to output in the requested format. colorCode
// applies conditional fills to the profit column in workbook mode; a
// coloring failure is reported and the workbook still saved.
func (w *Writer) Save(ctx context.Context, rep Report, output, format string, colorCode bool) error {
	switch format {
	case config.FormatXLSX:
		return w.saveWorkbook(ctx, rep, output, colorCode)
	case config.FormatCSV:
		return w.saveCSV(ctx, rep, output)
	default:
		return apperrors.NewValidationError(
			fmt.Sprintf("unsupported output format: %s", format))
	}
}

func (w *Writer) saveWorkbook(ctx context.Context, rep Report, output string, colorCode bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCleaned); err != nil {
		return apperrors.NewExportError("failed to create cleaned data sheet", err)
	}
	if err := writeTableSheet(f, SheetCleaned, rep.Cleaned); err != nil {
		return apperrors.NewExportError("failed to write cleaned data sheet", err)
	}

	if err := w.writeSheet(f, SheetSummary, summaryHeaders(rep.Summary), [][]interface{}{summaryCells(rep.Summary)}); err != nil {
		return err
	}

	if rep.Pivot != nil {
		headers, rows := pivotCells(rep.Pivot)
		if err := w.writeSheet(f, SheetPivot, headers, rows); err != nil {
			return err
		}
	}

	if len(rep.Monthly) > 0 {
		headers, rows := monthlyCells(rep.Monthly)
		if err := w.writeSheet(f, SheetMonthly, headers, rows); err != nil {
			return err
		}
	}

	if colorCode {
		found, err := applyProfitColoring(f, SheetCleaned, rep.Cleaned)
		switch {
		case err != nil:
			w.logger.WarnContext(ctx, "error applying color coding; saving without it",
				slog.String("error", err.Error()))
		case !found:
			w.logger.DebugContext(ctx, "no profit column found for color coding")
		}
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewExportError("failed to create output directory", err)
		}
	}
	if err := f.SaveAs(output); err != nil {
		return apperrors.NewExportError("failed to save report workbook", err).
			WithContext("path", output)
	}

	w.logger.InfoContext(ctx, "final report saved", slog.String("path", output))
	return nil
}

// writeSheet adds a named sheet with a header row and typed cell rows.
func (w *Writer) writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("failed to create sheet %q", name), err)
	}
	for j, h := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return apperrors.NewExportError("failed to address header cell", err)
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return apperrors.NewExportError("failed to write header cell", err)
		}
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return apperrors.NewExportError("failed to address cell", err)
			}
			if d, ok := v.(decimal.Decimal); ok {
				v, _ = d.Float64()
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return apperrors.NewExportError("failed to write cell", err)
			}
		}
	}
	return nil
}

func (w *Writer) saveCSV(ctx context.Context, rep Report, output string) error {
	base := strings.TrimSuffix(output, filepath.Ext(output))

	cleanedPath := base + suffixCleaned
	if err := w.csv.WriteSimpleCSV(cleanedPath, rep.Cleaned.Columns(), tableRecords(rep.Cleaned)); err != nil {
		return apperrors.NewExportError("failed to save cleaned data CSV", err)
	}

	summaryPath := base + suffixSummary
	if err := w.csv.WriteSimpleCSV(summaryPath, summaryHeaders(rep.Summary), [][]string{stringCells(summaryCells(rep.Summary))}); err != nil {
		return apperrors.NewExportError("failed to save summary CSV", err)
	}

	written := []string{cleanedPath, summaryPath}

	if rep.Pivot != nil {
		headers, rows := pivotCells(rep.Pivot)
		path := base + suffixPivot
		if err := w.csv.WriteSimpleCSV(path, headers, stringRecords(rows)); err != nil {
			return apperrors.NewExportError("failed to save pivot CSV", err)
		}
		written = append(written, path)
	}

	if len(rep.Monthly) > 0 {
		headers, rows := monthlyCells(rep.Monthly)
		path := base + suffixMonthly
		if err := w.csv.WriteSimpleCSV(path, headers, stringRecords(rows)); err != nil {
			return apperrors.NewExportError("failed to save monthly totals CSV", err)
		}
		written = append(written, path)
	}

	w.logger.InfoContext(ctx, "CSV reports saved",
		slog.Int("file_count", len(written)),
		slog.Any("files", written))
	return nil
}

// summaryHeaders and summaryCells render the summary record.
func summaryHeaders(s aggregate.Summary) []string {
	headers := []string{"Revenue", "Cost", "Profit"}
	if s.Margin != nil {
		headers = append(headers, "Profit Margin")
	}
	return headers
}

func summaryCells(s aggregate.Summary) []interface{} {
	cells := []interface{}{s.Revenue, s.Cost, s.Profit}
	if s.Margin != nil {
		cells = append(cells, *s.Margin)
	}
	return cells
}

func pivotCells(p *aggregate.Pivot) ([]string, [][]interface{}) {
	headers := []string{p.Index, p.Values}
	rows := make([][]interface{}, 0, len(p.Rows))
	for _, r := range p.Rows {
		rows = append(rows, []interface{}{r.Key, r.Value})
	}
	return headers, rows
}

func monthlyCells(monthly []aggregate.MonthlyRow) ([]string, [][]interface{}) {
	withMargin := len(monthly) > 0 && monthly[0].Margin != nil
	headers := []string{"month", "revenue", "cost", "profit"}
	if withMargin {
		headers = append(headers, "profit_margin")
	}

	rows := make([][]interface{}, 0, len(monthly))
	for _, m := range monthly {
		row := []interface{}{m.Month, m.Revenue, m.Cost, m.Profit}
		if m.Margin != nil {
			row = append(row, *m.Margin)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func tableRecords(tbl *table.Table) [][]string {
	records := make([][]string, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		record := make([]string, len(tbl.Columns()))
		for j, col := range tbl.Columns() {
			record[j] = tbl.Value(i, col).String()
		}
		records = append(records, record)
	}
	return records
}

// stringCells renders typed cells in their exact text form for flat files.
func stringCells(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if d, ok := c.(decimal.Decimal); ok {
			out[i] = d.String()
		} else {
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}

func stringRecords(rows [][]interface{}) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = stringCells(row)
	}
	return out
}
