package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"salescli/internal/table"
	"salescli/internal/transform"
)

// Conditional fill colors for the profit column: negative, positive, zero.
const (
	fillNegative = "FFC7CE"
	fillPositive = "C6EFCE"
	fillZero     = "FFEB9C"
)

// SaveTableWorkbook writes a table as a single-sheet workbook, used for the
// merged intermediate file.
func SaveTableWorkbook(path, sheetName string, tbl *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := writeTableSheet(f, sheetName, tbl); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return f.SaveAs(path)
}

// writeTableSheet fills a sheet with the table's header row and data rows.
// Numeric cells are written as numbers, everything else as text.
func writeTableSheet(f *excelize.File, sheetName string, tbl *table.Table) error {
	for j, col := range tbl.Columns() {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}

	for i := 0; i < tbl.Len(); i++ {
		for j, col := range tbl.Columns() {
			v := tbl.Value(i, col)
			if v.IsMissing() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue converts a table value into the native type excelize stores.
func cellValue(v table.Value) interface{} {
	if d, ok := v.Decimal(); ok {
		f, _ := d.Float64()
		return f
	}
	return v.String()
}

// applyProfitColoring locates the profit header on the sheet and adds three
// mutually exclusive conditional fill rules over that column's data rows:
// negative red, positive green, exactly-zero yellow. Reports whether a
// profit column was found.
func applyProfitColoring(f *excelize.File, sheetName string, tbl *table.Table) (bool, error) {
	profitCol := -1
	for j, col := range tbl.Columns() {
		if strings.EqualFold(strings.TrimSpace(col), transform.ColumnProfit) {
			profitCol = j + 1
			break
		}
	}
	if profitCol == -1 {
		return false, nil
	}

	colName, err := excelize.ColumnNumberToName(profitCol)
	if err != nil {
		return true, err
	}
	rangeRef := fmt.Sprintf("%s2:%s%d", colName, colName, tbl.Len()+1)

	rules := []struct {
		criteria string
		color    string
	}{
		{"less than", fillNegative},
		{"greater than", fillPositive},
		{"equal to", fillZero},
	}

	var formats []excelize.ConditionalFormatOptions
	for _, rule := range rules {
		styleID, err := f.NewConditionalStyle(&excelize.Style{
			Fill: excelize.Fill{
				Type:    "pattern",
				Pattern: 1,
				Color:   []string{rule.color},
			},
		})
		if err != nil {
			return true, err
		}
		format := styleID
		formats = append(formats, excelize.ConditionalFormatOptions{
			Type:     "cell",
			Criteria: rule.criteria,
			Value:    "0",
			Format:   &format,
		})
	}

	if err := f.SetConditionalFormat(sheetName, rangeRef, formats); err != nil {
		return true, err
	}
	return true, nil
}
