// Package dbwriter writes extracted tables into a SQLite database file.
package dbwriter

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/henkan/internal/models"
	"github.com/hyperjump/henkan/pkg/utils"
)

// Writer converts tables to SQLite relations.
type Writer struct {
	inferTypes bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithTypeInference controls INTEGER/REAL/TEXT column inference.
// Enabled by default; when disabled every column is TEXT.
func WithTypeInference(enabled bool) WriterOption {
	return func(w *Writer) { w.inferTypes = enabled }
}

// NewWriter returns a Writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{inferTypes: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write creates a SQLite database at path containing one relation per table.
// Table and column names are sanitized and de-duplicated; an existing table
// of the same name is replaced. The database is built in a temp file and
// renamed into place on success, so a failed conversion leaves no partial
// output at path.
func (w *Writer) Write(ctx context.Context, path string, tables []models.Table) ([]models.ConversionInfo, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to write")
	}

	tmpPath := path + ".tmp"
	infos, err := w.writeAll(ctx, tmpPath, tables)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("finalize database: %w", err)
	}
	return infos, nil
}

func (w *Writer) writeAll(ctx context.Context, path string, tables []models.Table) ([]models.ConversionInfo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	infos := make([]models.ConversionInfo, 0, len(tables))
	seenTables := map[string]bool{}
	for i := range tables {
		t := &tables[i]
		tableName := utils.Dedupe(utils.SanitizeTableName(t.Name), seenTables)
		info, err := w.writeTable(ctx, tx, tableName, t)
		if err != nil {
			return nil, fmt.Errorf("write table %q: %w", tableName, err)
		}
		infos = append(infos, info)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return infos, nil
}

func (w *Writer) writeTable(ctx context.Context, tx *sql.Tx, tableName string, t *models.Table) (models.ConversionInfo, error) {
	t.Normalize()

	seenCols := map[string]bool{}
	columns := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		columns[i] = utils.Dedupe(utils.SanitizeColumnName(h), seenCols)
	}

	types := make([]ColumnType, len(columns))
	for i := range types {
		types[i] = ColumnTypeText
		if w.inferTypes {
			types[i] = InferColumnType(columnValues(t.Rows, i))
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(tableName))); err != nil {
		return models.ConversionInfo{}, fmt.Errorf("drop existing: %w", err)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col), types[i])
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tableName), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return models.ConversionInfo{}, fmt.Errorf("create: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(tableName), placeholders)
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return models.ConversionInfo{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(columns))
	for _, row := range t.Rows {
		for i, v := range row {
			args[i] = types[i].convert(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return models.ConversionInfo{}, fmt.Errorf("insert row: %w", err)
		}
	}

	return models.ConversionInfo{
		SheetName: t.Name,
		TableName: tableName,
		Rows:      len(t.Rows),
		Columns:   columns,
	}, nil
}

func columnValues(rows [][]string, col int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values
}

// quoteIdent wraps an identifier in double quotes. Sanitized names contain
// no quotes, but quoting keeps reserved words (e.g. a sheet named "order")
// valid as table names.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Preview returns the first limit rows of a table in the database at path,
// with column names, in insertion order.
func Preview(ctx context.Context, path, table string, limit int) (*models.Table, error) {
	if limit <= 0 {
		limit = 5
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT ?", quoteIdent(table)), limit)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := &models.Table{Name: table, Headers: cols}
	for rows.Next() {
		scanned := make([]sql.NullString, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range scanned {
			ptrs[i] = &scanned[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
		for i, v := range scanned {
			if v.Valid {
				row[i] = v.String
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}

// TableNames lists the user tables in the database at path.
func TableNames(ctx context.Context, path string) ([]string, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
