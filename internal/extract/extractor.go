// Package extract turns uploaded PDF and Excel files into tables.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/henkan/internal/models"
)

// ErrUnsupportedFormat is returned for file types henkan cannot convert.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoTables is returned when a PDF contains no detectable tables and the
// text fallback is disabled or yields nothing.
var ErrNoTables = errors.New("no tables found")

// Extractor extracts tables from document files.
type Extractor struct {
	fallbackTextTable bool
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithTextFallback controls whether a PDF without detectable tables yields a
// single one-column table of its text lines. Enabled by default.
func WithTextFallback(enabled bool) ExtractorOption {
	return func(e *Extractor) { e.fallbackTextTable = enabled }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{fallbackTextTable: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsSupported reports whether ext (with leading dot) is a convertible format.
func IsSupported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".xlsx", ".xls":
		return true
	}
	return false
}

// Tables reads the file at path and extracts its tables.
func (e *Extractor) Tables(path string) ([]models.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.TablesFromBytes(content, strings.ToLower(filepath.Ext(path)))
}

// TablesFromBytes extracts tables from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Excel sheets map to
// tables one-to-one with the first row as header; PDF tables are detected
// from text layout and named Sheet1..SheetN.
func (e *Extractor) TablesFromBytes(content []byte, ext string) ([]models.Table, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return e.extractPDF(content)
	case ".xlsx":
		return extractXLSX(content)
	case ".xls":
		return extractXLS(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// SheetNames returns the sheet names of content without materializing rows.
// For PDF inputs this requires full table detection, so callers that need
// both names and data should use TablesFromBytes once.
func (e *Extractor) SheetNames(content []byte, ext string) ([]string, error) {
	switch strings.ToLower(ext) {
	case ".xlsx":
		return sheetNamesXLSX(content)
	case ".xls":
		return sheetNamesXLS(content)
	case ".pdf":
		tables, err := e.extractPDF(content)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = t.Name
		}
		return names, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// tableFromRows builds a Table from raw sheet rows: the first row is the
// header, the rest are data, and every row is normalized to the header width.
// Returns false for sheets without any rows.
func tableFromRows(name string, rows [][]string) (models.Table, bool) {
	for len(rows) > 0 && rowEmpty(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return models.Table{}, false
	}
	t := models.Table{
		Name:    name,
		Headers: rows[0],
		Rows:    rows[1:],
	}
	t.Normalize()
	return t, true
}
