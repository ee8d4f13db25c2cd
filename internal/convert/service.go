// Package convert orchestrates the upload → extract → write pipeline.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/henkan/internal/dbwriter"
	"github.com/hyperjump/henkan/internal/extract"
	"github.com/hyperjump/henkan/internal/models"
	"github.com/hyperjump/henkan/internal/session"
	"github.com/hyperjump/henkan/internal/sheetio"
	"github.com/hyperjump/henkan/pkg/utils"
)

// previewCellLen caps cell width in previews so one oversized cell cannot
// flood the UI. Output files keep the full values.
const previewCellLen = 256

// ErrSheetNotFound is returned when a requested sheet is not in the upload.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrNotConverted is returned when a download is requested before conversion.
var ErrNotConverted = errors.New("no converted database for this upload")

// Service runs conversions against the session store.
type Service struct {
	sessions    *session.Store
	extractor   *extract.Extractor
	writer      *dbwriter.Writer
	previewRows int
	logger      *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a logger for conversion debug output.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithPreviewRows sets the default number of preview rows.
func WithPreviewRows(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.previewRows = n
		}
	}
}

// NewService creates a conversion service.
func NewService(sessions *session.Store, extractor *extract.Extractor, writer *dbwriter.Writer, opts ...ServiceOption) *Service {
	s := &Service{
		sessions:    sessions,
		extractor:   extractor,
		writer:      writer,
		previewRows: 5,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KindForExt maps a file extension to an upload kind.
// Returns extract.ErrUnsupportedFormat for anything else.
func KindForExt(ext string) (models.UploadKind, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return models.UploadKindPDF, nil
	case ".xlsx", ".xls":
		return models.UploadKindExcel, nil
	default:
		return "", fmt.Errorf("%w: %s", extract.ErrUnsupportedFormat, ext)
	}
}

// Ingest stores an uploaded file in a new session and prepares it for
// conversion: PDFs are converted to an intermediate XLSX,
// Excel files are parsed for their sheet list. The session is discarded on
// any failure so a bad upload leaves nothing behind.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (*models.Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	kind, err := KindForExt(ext)
	if err != nil {
		return nil, err
	}

	up, err := s.sessions.Create(filepath.Base(filename), kind)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, up, ext, r); err != nil {
		_ = s.sessions.Remove(up.ID)
		return nil, err
	}
	s.logger.Debug("upload ingested",
		zap.String("id", up.ID),
		zap.String("filename", up.Filename),
		zap.String("kind", string(up.Kind)),
		zap.Int("sheets", len(up.Sheets)),
	)
	return up, nil
}

func (s *Service) prepare(ctx context.Context, up *models.Upload, ext string, r io.Reader) error {
	dir := s.sessions.Dir(up.ID)
	up.OriginalPath = filepath.Join(dir, "original"+ext)

	out, err := os.Create(up.OriginalPath)
	if err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tables, err := s.extractor.Tables(up.OriginalPath)
	if err != nil {
		return err
	}

	if up.Kind == models.UploadKindPDF {
		// PDF path: tables become sheets of an intermediate workbook, which
		// the rest of the pipeline treats exactly like an Excel upload.
		up.ExcelPath = filepath.Join(dir, "converted.xlsx")
		if err := sheetio.WriteTablesFile(up.ExcelPath, tables); err != nil {
			return err
		}
	} else {
		up.ExcelPath = up.OriginalPath
	}

	up.Sheets = make([]models.SheetInfo, len(tables))
	for i, t := range tables {
		up.Sheets[i] = models.SheetInfo{Name: t.Name, Rows: t.RowCount(), Columns: t.ColumnCount()}
	}
	return nil
}

// tables re-extracts the upload's workbook. Sessions hold files, not rows;
// memory stays bounded by the single conversion in flight.
func (s *Service) tables(up *models.Upload) ([]models.Table, error) {
	return s.extractor.Tables(up.ExcelPath)
}

// SheetPreview returns the first rows of one sheet before conversion.
// rows <= 0 uses the configured default.
func (s *Service) SheetPreview(ctx context.Context, id, sheet string, rows int) (*models.Table, error) {
	up, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if rows <= 0 {
		rows = s.previewRows
	}
	tables, err := s.tables(up)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		if tables[i].Name == sheet {
			t := tables[i]
			if len(t.Rows) > rows {
				t.Rows = t.Rows[:rows]
			}
			truncateCells(&t)
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
}

func truncateCells(t *models.Table) {
	for _, row := range t.Rows {
		for i, v := range row {
			row[i] = utils.Truncate(v, previewCellLen)
		}
	}
}

// Convert writes the selected sheets of an upload to a SQLite database in
// the session directory. An empty selection converts every sheet.
func (s *Service) Convert(ctx context.Context, id string, req *models.ConvertRequest) (*models.ConversionResult, error) {
	up, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	tables, err := s.tables(up)
	if err != nil {
		return nil, err
	}
	selected, err := selectTables(tables, req.Sheets)
	if err != nil {
		return nil, err
	}

	dbName := databaseName(req.DatabaseName, up.Filename)
	dbPath := filepath.Join(s.sessions.Dir(up.ID), dbName)
	infos, err := s.writer.Write(ctx, dbPath, selected)
	if err != nil {
		return nil, fmt.Errorf("write database: %w", err)
	}

	if err := s.sessions.SetDatabase(up.ID, dbPath, dbName); err != nil {
		return nil, err
	}
	s.logger.Debug("conversion complete",
		zap.String("id", up.ID),
		zap.String("database", dbName),
		zap.Int("tables", len(infos)),
	)
	return &models.ConversionResult{DatabaseName: dbName, Sheets: infos}, nil
}

// TablePreview returns the first rows of a converted table, read back from
// the output database so the preview shows exactly what was written.
func (s *Service) TablePreview(ctx context.Context, id, table string, rows int) (*models.Table, error) {
	up, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if up.DatabasePath == "" {
		return nil, ErrNotConverted
	}
	if rows <= 0 {
		rows = s.previewRows
	}
	preview, err := dbwriter.Preview(ctx, up.DatabasePath, table, rows)
	if err != nil {
		return nil, err
	}
	truncateCells(preview)
	return preview, nil
}

// DatabaseFile returns the path and download name of the converted database.
func (s *Service) DatabaseFile(id string) (path, name string, err error) {
	up, err := s.sessions.Get(id)
	if err != nil {
		return "", "", err
	}
	if up.DatabasePath == "" {
		return "", "", ErrNotConverted
	}
	return up.DatabasePath, up.DatabaseName, nil
}

// ExcelFile returns the path and download name of the upload's workbook:
// the original file for Excel uploads, the intermediate XLSX for PDFs.
func (s *Service) ExcelFile(id string) (path, name string, err error) {
	up, err := s.sessions.Get(id)
	if err != nil {
		return "", "", err
	}
	if up.Kind == models.UploadKindPDF {
		return up.ExcelPath, stem(up.Filename) + ".xlsx", nil
	}
	return up.ExcelPath, up.Filename, nil
}

// ConvertPath converts a file on disk without a session: used by the CLI and
// the hot-folder watcher. Outputs land in outDir as <stem>.db, plus
// <stem>.xlsx for PDF inputs. Returns the conversion result and output paths.
func (s *Service) ConvertPath(ctx context.Context, inputPath, outDir string, sheets []string) (*models.ConversionResult, []string, error) {
	ext := strings.ToLower(filepath.Ext(inputPath))
	kind, err := KindForExt(ext)
	if err != nil {
		return nil, nil, err
	}
	tables, err := s.extractor.Tables(inputPath)
	if err != nil {
		return nil, nil, err
	}

	var outputs []string
	base := stem(filepath.Base(inputPath))
	if kind == models.UploadKindPDF {
		xlsxPath := filepath.Join(outDir, base+".xlsx")
		if err := sheetio.WriteTablesFile(xlsxPath, tables); err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, xlsxPath)
	}

	selected, err := selectTables(tables, sheets)
	if err != nil {
		return nil, nil, err
	}
	dbPath := filepath.Join(outDir, base+".db")
	infos, err := s.writer.Write(ctx, dbPath, selected)
	if err != nil {
		return nil, nil, fmt.Errorf("write database: %w", err)
	}
	outputs = append(outputs, dbPath)
	return &models.ConversionResult{DatabaseName: filepath.Base(dbPath), Sheets: infos}, outputs, nil
}

// Discard removes a session and its files.
func (s *Service) Discard(id string) error {
	return s.sessions.Remove(id)
}

func selectTables(tables []models.Table, names []string) ([]models.Table, error) {
	if len(names) == 0 {
		return tables, nil
	}
	byName := make(map[string]*models.Table, len(tables))
	for i := range tables {
		byName[tables[i].Name] = &tables[i]
	}
	out := make([]models.Table, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
		}
		out = append(out, *t)
	}
	return out, nil
}

// databaseName picks the output database filename: the user's choice when
// given (basename only, .db enforced), else the upload's stem plus ".db".
func databaseName(requested, uploadName string) string {
	name := strings.TrimSpace(requested)
	if name != "" {
		name = filepath.Base(name)
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = stem(uploadName)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".db") {
		name += ".db"
	}
	return name
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
