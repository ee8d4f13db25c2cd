package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hyperjump/henkan/internal/models"
)

// extractPDF detects tables on every page of a PDF. Detected tables are
// named Sheet1..SheetN in page order. When nothing table-like is found and
// the text fallback is enabled, the document's non-blank text lines become a
// single one-column "Content" table.
func (e *Extractor) extractPDF(content []byte) ([]models.Table, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var tables []models.Table
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		runs := runsFromPage(page)
		for _, t := range detectTables(runs) {
			t.Name = fmt.Sprintf("Sheet%d", len(tables)+1)
			tables = append(tables, t)
		}
	}
	if len(tables) > 0 {
		return tables, nil
	}

	if e.fallbackTextTable {
		if t, ok := textFallbackTable(r); ok {
			return []models.Table{t}, nil
		}
	}
	return nil, ErrNoTables
}

func runsFromPage(page pdf.Page) []textRun {
	texts := page.Content().Text
	runs := make([]textRun, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		runs = append(runs, textRun{
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
			S:        t.S,
		})
	}
	return runs
}

// textFallbackTable collects the document's non-blank text lines into a
// one-column table, mirroring the behavior users expect from table-less
// PDFs: the content is still inspectable and convertible.
func textFallbackTable(r *pdf.Reader) (models.Table, bool) {
	var lines []string
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
	}
	if len(lines) == 0 {
		return models.Table{}, false
	}
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = []string{line}
	}
	return models.Table{Name: "Sheet1", Headers: []string{"Content"}, Rows: rows}, true
}
