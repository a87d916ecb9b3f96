// Package collector locates the source spreadsheets of a run and merges
// their rows into a single table, tagging every row with its originating
// file.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "salescli/internal/errors"
	"salescli/internal/exporter"
	"salescli/internal/files"
	"salescli/internal/table"
)

// SheetChoice selects which sheet(s) to read from each workbook: one named
// sheet, or every sheet concatenated.
type SheetChoice struct {
	name string
}

// AllSheets reads every sheet of each workbook, concatenated in sheet order.
func AllSheets() SheetChoice {
	return SheetChoice{}
}

// NamedSheet reads a single sheet by name from each workbook.
func NamedSheet(name string) SheetChoice {
	return SheetChoice{name: name}
}

// Named returns the selected sheet name, if one was chosen.
func (c SheetChoice) Named() (string, bool) {
	return c.name, c.name != ""
}

// SourceColumn is the derived column recording each row's originating file.
const SourceColumn = "source_file"

// Collector merges the spreadsheets of a data folder into one table.
type Collector struct {
	logger *slog.Logger
}

// New creates a collector.
func New(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Merge reads every Excel file in folder, concatenates their rows in file
// order, and writes the merged table to mergedPath as an intermediate
// workbook. It returns the merged table together with the source file paths,
// which the archiver needs after the run.
func (c *Collector) Merge(ctx context.Context, folder string, sheet SheetChoice, mergedPath string) (*table.Table, []string, error) {
	paths, err := files.FindExcelFiles(folder)
	if err != nil {
		return nil, nil, apperrors.NewStorageError("failed to scan data folder", err).
			WithContext("folder", folder)
	}
	if len(paths) == 0 {
		return nil, nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no Excel files found in folder: %s", folder))
	}

	merged := table.New()
	for _, path := range paths {
		c.logger.InfoContext(ctx, "reading file", slog.String("path", path))

		tbl, err := c.readWorkbook(path, sheet)
		if err != nil {
			return nil, nil, err
		}

		tbl.SetAll(SourceColumn, table.Str(filepath.Base(path)))
		merged.AppendTable(tbl)
	}

	c.logger.InfoContext(ctx, "merged source files",
		slog.Int("file_count", len(paths)),
		slog.Int("row_count", merged.Len()))

	if mergedPath != "" {
		if err := exporter.SaveTableWorkbook(mergedPath, "Merged Data", merged); err != nil {
			return nil, nil, apperrors.NewExportError("failed to save merged workbook", err).
				WithContext("path", mergedPath)
		}
		c.logger.InfoContext(ctx, "saved merged workbook", slog.String("path", mergedPath))
	}

	return merged, paths, nil
}

// readWorkbook reads one workbook into a table per the sheet choice.
func (c *Collector) readWorkbook(path string, sheet SheetChoice) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	if name, ok := sheet.Named(); ok {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("failed to read sheet %q", name), err).
				WithContext("path", path)
		}
		return rowsToTable(rows), nil
	}

	tbl := table.New()
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("failed to read sheet %q", name), err).
				WithContext("path", path)
		}
		tbl.AppendTable(rowsToTable(rows))
	}
	return tbl, nil
}

// rowsToTable converts raw sheet rows into a table. The first row carries
// the column headers; blank header cells get positional names.
func rowsToTable(rows [][]string) *table.Table {
	tbl := table.New()
	if len(rows) == 0 {
		return tbl
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i)
		}
		headers[i] = h
	}

	// A sheet holding only a header row still contributes its columns.
	for _, h := range headers {
		tbl.AddColumn(h)
	}

	for _, raw := range rows[1:] {
		row := make(table.Row, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				row[header] = table.ParseCell(raw[i])
			} else {
				row[header] = table.Missing
			}
		}
		tbl.AppendOrdered(headers, row)
	}

	return tbl
}
