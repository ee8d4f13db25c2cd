package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/henkan/internal/models"
)

func extractXLSX(content []byte) ([]models.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var tables []models.Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if t, ok := tableFromRows(sheet, rows); ok {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func sheetNamesXLSX(content []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
