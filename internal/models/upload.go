package models

import "time"

// UploadKind distinguishes the two accepted input families.
type UploadKind string

const (
	UploadKindPDF   UploadKind = "pdf"
	UploadKindExcel UploadKind = "excel"
)

// Upload represents one uploaded file and the session state derived from it.
// ExcelPath is the workbook used for sheet listing and conversion: the stored
// original for Excel uploads, or the intermediate XLSX produced from a PDF.
type Upload struct {
	ID           string      `json:"id"`
	Filename     string      `json:"filename"`
	Kind         UploadKind  `json:"kind"`
	Sheets       []SheetInfo `json:"sheets"`
	OriginalPath string      `json:"-"`
	ExcelPath    string      `json:"-"`
	DatabasePath string      `json:"-"`
	DatabaseName string      `json:"database_name,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ConversionInfo describes one sheet written to the output database.
type ConversionInfo struct {
	SheetName string   `json:"sheet_name"`
	TableName string   `json:"table_name"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
}

// ConversionResult is the outcome of converting selected sheets to SQLite.
type ConversionResult struct {
	DatabaseName string           `json:"database_name"`
	Sheets       []ConversionInfo `json:"sheets"`
}

// ConvertRequest is the input for a conversion. An empty Sheets slice means
// all sheets are converted.
type ConvertRequest struct {
	Sheets       []string `json:"sheets,omitempty"`
	DatabaseName string   `json:"database_name,omitempty"`
}
