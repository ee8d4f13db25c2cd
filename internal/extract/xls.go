package extract

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"github.com/hyperjump/henkan/internal/models"
)

// extractXLS reads a legacy BIFF (.xls) workbook. extrame/xls exposes rows
// sparsely, so cells are placed by column index to keep alignment.
func extractXLS(content []byte) ([]models.Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	var tables []models.Table
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}
		rows = trimTrailingEmptyRows(rows)
		if t, ok := tableFromRows(sheet.Name, rows); ok {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func sheetNamesXLS(content []byte) ([]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}
	var names []string
	for i := 0; i < wb.NumSheets(); i++ {
		if sheet := wb.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}
	return names, nil
}

// trimTrailingEmptyRows drops empty rows from the end of a sheet. MaxRow in
// BIFF files often points past the last populated row.
func trimTrailingEmptyRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && rowEmpty(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
