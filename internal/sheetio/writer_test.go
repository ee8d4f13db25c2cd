package sheetio

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/henkan/internal/models"
)

func TestWriteTables_roundTrip(t *testing.T) {
	tables := []models.Table{
		{Name: "Orders", Headers: []string{"ID", "Item"}, Rows: [][]string{{"1", "bolt"}, {"2", "nut"}}},
		{Name: "Totals", Headers: []string{"Sum"}, Rows: [][]string{{"52"}}},
	}
	var buf bytes.Buffer
	if err := WriteTables(&buf, tables); err != nil {
		t.Fatalf("WriteTables: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Orders" || sheets[1] != "Totals" {
		t.Fatalf("sheets: got %v", sheets)
	}
	rows, err := f.GetRows("Orders")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows incl header: got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[2][1] != "nut" {
		t.Errorf("rows: got %v", rows)
	}
}

func TestWriteTables_sanitizesAndDedupes(t *testing.T) {
	tables := []models.Table{
		{Name: "bad/name", Headers: []string{"a"}},
		{Name: "bad*name", Headers: []string{"a"}},
	}
	var buf bytes.Buffer
	if err := WriteTables(&buf, tables); err != nil {
		t.Fatalf("WriteTables: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if sheets[0] != "bad_name" || sheets[1] != "bad_name_2" {
		t.Errorf("sheets: got %v", sheets)
	}
}

func TestWriteTables_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTables(&buf, nil); err == nil {
		t.Fatal("expected error for zero tables")
	}
}
