package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPDF assembles a minimal one-page PDF around the given content stream.
// Object offsets and the xref table are computed from the buffer, so the
// fixture stays valid as test content changes.
func buildPDF(t *testing.T, stream string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	obj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n")
	// Fixed glyph widths keep extracted character positions strictly
	// increasing, so cell text reassembles in order.
	widths := strings.TrimSpace(strings.Repeat("600 ", 95))
	obj("4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica " +
		"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>\nendobj\n")
	obj(fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream))

	xref := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1))
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xref))
	return buf.Bytes()
}

// placed positions one string at (x, y) in 12pt text.
func placed(x, y float64, s string) string {
	return fmt.Sprintf("BT /F1 12 Tf 1 0 0 1 %.0f %.0f Tm (%s) Tj ET\n", x, y, s)
}

func TestExtractPDF_tableDetection(t *testing.T) {
	stream := placed(72, 720, "Name") + placed(220, 720, "Qty") +
		placed(72, 700, "apple") + placed(220, 700, "5") +
		placed(72, 680, "pear") + placed(220, 680, "7")
	content := buildPDF(t, stream)

	tables, err := NewExtractor().TablesFromBytes(content, ".pdf")
	if err != nil {
		t.Fatalf("TablesFromBytes: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("tables: got %d, want 1", len(tables))
	}
	got := tables[0]
	if got.Name != "Sheet1" {
		t.Errorf("name: got %q", got.Name)
	}
	if len(got.Headers) != 2 || got.Headers[0] != "Name" || got.Headers[1] != "Qty" {
		t.Errorf("headers: got %v", got.Headers)
	}
	if len(got.Rows) != 2 || got.Rows[0][0] != "apple" || got.Rows[1][1] != "7" {
		t.Errorf("rows: got %v", got.Rows)
	}
}

func TestExtractPDF_multipleTablesNamedInOrder(t *testing.T) {
	stream := placed(72, 720, "A") + placed(220, 720, "B") +
		placed(72, 700, "1") + placed(220, 700, "2") +
		placed(72, 660, "Some paragraph between the tables.") +
		placed(72, 620, "X") + placed(220, 620, "Y") +
		placed(72, 600, "3") + placed(220, 600, "4")
	content := buildPDF(t, stream)

	tables, err := NewExtractor().TablesFromBytes(content, ".pdf")
	if err != nil {
		t.Fatalf("TablesFromBytes: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("tables: got %d, want 2", len(tables))
	}
	if tables[0].Name != "Sheet1" || tables[1].Name != "Sheet2" {
		t.Errorf("names: got %q, %q", tables[0].Name, tables[1].Name)
	}
	if tables[1].Headers[0] != "X" {
		t.Errorf("second table headers: got %v", tables[1].Headers)
	}
}

func TestExtractPDF_textFallback(t *testing.T) {
	stream := placed(72, 720, "Quarterly report") +
		placed(72, 700, "All figures are preliminary.")
	content := buildPDF(t, stream)

	tables, err := NewExtractor().TablesFromBytes(content, ".pdf")
	if err != nil {
		t.Fatalf("TablesFromBytes: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("tables: got %d, want 1", len(tables))
	}
	got := tables[0]
	if got.Name != "Sheet1" || len(got.Headers) != 1 || got.Headers[0] != "Content" {
		t.Errorf("fallback shape: name %q, headers %v", got.Name, got.Headers)
	}
	if len(got.Rows) == 0 {
		t.Fatal("fallback produced no rows")
	}
	var all []string
	for _, row := range got.Rows {
		all = append(all, row...)
	}
	joined := strings.Join(all, "\n")
	if !strings.Contains(joined, "Quarterly report") || !strings.Contains(joined, "preliminary") {
		t.Errorf("fallback content: got %q", joined)
	}
}

func TestExtractPDF_fallbackDisabled(t *testing.T) {
	content := buildPDF(t, placed(72, 720, "Just prose, no table."))

	_, err := NewExtractor(WithTextFallback(false)).TablesFromBytes(content, ".pdf")
	if !errors.Is(err, ErrNoTables) {
		t.Errorf("got %v, want ErrNoTables", err)
	}
}

func TestExtractPDF_sheetNames(t *testing.T) {
	stream := placed(72, 720, "H1") + placed(220, 720, "H2") +
		placed(72, 700, "a") + placed(220, 700, "b")
	content := buildPDF(t, stream)

	names, err := NewExtractor().SheetNames(content, ".pdf")
	if err != nil {
		t.Fatalf("SheetNames: %v", err)
	}
	if len(names) != 1 || names[0] != "Sheet1" {
		t.Errorf("names: got %v", names)
	}
}
