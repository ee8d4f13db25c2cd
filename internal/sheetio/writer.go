// Package sheetio writes extracted tables to XLSX workbooks.
package sheetio

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/henkan/internal/models"
	"github.com/hyperjump/henkan/pkg/utils"
)

// WriteTables writes one sheet per table to w. Sheet names are sanitized for
// Excel's constraints and de-duplicated. At least one table is required.
func WriteTables(w io.Writer, tables []models.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	seen := map[string]bool{}
	for i, t := range tables {
		name := utils.Dedupe(utils.SanitizeSheetName(t.Name), seen)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %q: %w", name, err)
			}
		}
		if err := writeSheet(f, name, &t); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteTablesFile writes the workbook to a file at path.
func WriteTablesFile(path string, tables []models.Table) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook file: %w", err)
	}
	if err := WriteTables(out, tables); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	return out.Close()
}

func writeSheet(f *excelize.File, sheet string, t *models.Table) error {
	if err := setRow(f, sheet, 1, t.Headers); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cellName, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowNum, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cellName, &cells); err != nil {
		return fmt.Errorf("set row %d on %q: %w", rowNum, sheet, err)
	}
	return nil
}
