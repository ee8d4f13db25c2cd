package extract

import "testing"

// row builds runs for one visual line: texts placed at the given X starts.
func row(y float64, cells map[float64]string) []textRun {
	var runs []textRun
	for x, s := range cells {
		runs = append(runs, textRun{X: x, Y: y, W: float64(len(s)) * 5, FontSize: 10, S: s})
	}
	return runs
}

func TestDetectTables_simpleGrid(t *testing.T) {
	var runs []textRun
	runs = append(runs, row(700, map[float64]string{50: "Name", 200: "City", 350: "Age"})...)
	runs = append(runs, row(685, map[float64]string{50: "Ada", 200: "London", 350: "36"})...)
	runs = append(runs, row(670, map[float64]string{50: "Alan", 200: "Wilmslow", 350: "41"})...)

	tables := detectTables(runs)
	if len(tables) != 1 {
		t.Fatalf("tables: got %d, want 1", len(tables))
	}
	tbl := tables[0]
	if len(tbl.Headers) != 3 || tbl.Headers[0] != "Name" || tbl.Headers[2] != "Age" {
		t.Errorf("headers: got %v", tbl.Headers)
	}
	if tbl.RowCount() != 2 {
		t.Fatalf("rows: got %d", tbl.RowCount())
	}
	if tbl.Rows[0][1] != "London" || tbl.Rows[1][0] != "Alan" {
		t.Errorf("rows: got %v", tbl.Rows)
	}
}

func TestDetectTables_runsMergedWithinCell(t *testing.T) {
	// "Unit" and "Price" are two runs close together: one cell, space joined.
	runs := []textRun{
		{X: 50, Y: 700, W: 20, FontSize: 10, S: "Unit"},
		{X: 73, Y: 700, W: 25, FontSize: 10, S: "Price"},
		{X: 300, Y: 700, W: 20, FontSize: 10, S: "Qty"},
		{X: 50, Y: 685, W: 20, FontSize: 10, S: "9.99"},
		{X: 300, Y: 685, W: 10, FontSize: 10, S: "3"},
	}
	tables := detectTables(runs)
	if len(tables) != 1 {
		t.Fatalf("tables: got %d, want 1", len(tables))
	}
	if tables[0].Headers[0] != "Unit Price" {
		t.Errorf("merged header: got %q", tables[0].Headers[0])
	}
}

func TestDetectTables_missingCellSnapsToColumn(t *testing.T) {
	var runs []textRun
	runs = append(runs, row(700, map[float64]string{50: "A", 200: "B", 350: "C"})...)
	runs = append(runs, row(685, map[float64]string{52: "1", 348: "3"})...) // column B empty
	runs = append(runs, row(670, map[float64]string{50: "4", 201: "5", 352: "6"})...)

	tables := detectTables(runs)
	if len(tables) != 1 {
		t.Fatalf("tables: got %d, want 1", len(tables))
	}
	tbl := tables[0]
	if tbl.Rows[0][0] != "1" || tbl.Rows[0][1] != "" || tbl.Rows[0][2] != "3" {
		t.Errorf("sparse row: got %v", tbl.Rows[0])
	}
}

func TestDetectTables_proseOnly(t *testing.T) {
	// Single-cell lines are prose, not tables.
	runs := []textRun{
		{X: 50, Y: 700, W: 200, FontSize: 10, S: "This is a paragraph of text."},
		{X: 50, Y: 685, W: 200, FontSize: 10, S: "It continues on another line."},
	}
	if tables := detectTables(runs); len(tables) != 0 {
		t.Errorf("tables: got %d, want 0", len(tables))
	}
}

func TestDetectTables_proseSeparatesTwoTables(t *testing.T) {
	var runs []textRun
	runs = append(runs, row(700, map[float64]string{50: "H1", 200: "H2"})...)
	runs = append(runs, row(685, map[float64]string{50: "a", 200: "b"})...)
	runs = append(runs, []textRun{{X: 50, Y: 660, W: 150, FontSize: 10, S: "Some narrative in between."}}...)
	runs = append(runs, row(640, map[float64]string{60: "K1", 210: "K2"})...)
	runs = append(runs, row(625, map[float64]string{60: "c", 210: "d"})...)

	tables := detectTables(runs)
	if len(tables) != 2 {
		t.Fatalf("tables: got %d, want 2", len(tables))
	}
	if tables[1].Headers[0] != "K1" || tables[1].Rows[0][1] != "d" {
		t.Errorf("second table: %+v", tables[1])
	}
}

func TestDetectTables_singleTabularLineIgnored(t *testing.T) {
	runs := row(700, map[float64]string{50: "lone", 200: "line"})
	if tables := detectTables(runs); len(tables) != 0 {
		t.Errorf("tables: got %d, want 0", len(tables))
	}
}

func TestDetectTables_empty(t *testing.T) {
	if tables := detectTables(nil); tables != nil {
		t.Errorf("got %v, want nil", tables)
	}
}
