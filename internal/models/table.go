// Package models defines core data structures for uploads, tables, and conversion results.
package models

// Table is an extracted table: a header row plus data rows.
// Every row has exactly len(Headers) cells; extraction pads or trims as needed.
type Table struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnCount returns the number of columns in the table.
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

// RowCount returns the number of data rows (excluding the header).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Normalize pads or trims every row to the header width. Tables built from
// loosely structured sources (PDF pages, sparse sheets) may have ragged rows;
// the SQLite and Excel writers require a uniform width.
func (t *Table) Normalize() {
	width := len(t.Headers)
	for i, row := range t.Rows {
		switch {
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			t.Rows[i] = padded
		case len(row) > width:
			t.Rows[i] = row[:width]
		}
	}
}

// SheetInfo summarizes one sheet of an uploaded or extracted workbook.
type SheetInfo struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}
