package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"kijiji-rentals/models"
)

// SQLiteTable receives the processed listings.
const SQLiteTable = "rental_listings"

// SQLiteWriter stores the processed table in a SQLite file. The table is
// recreated on every Write.
type SQLiteWriter struct {
	db    *sql.DB
	types map[string]models.ColumnType
}

// NewSQLiteWriter opens (creating if needed) the database at path.
func NewSQLiteWriter(path string, schema []models.Column) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, eris.Wrap(err, "sqlite: create output dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: open %q", path)
	}

	types := make(map[string]models.ColumnType, len(schema))
	for _, col := range schema {
		types[col.Name] = col.Type
	}
	return &SQLiteWriter{db: db, types: types}, nil
}

func sqliteType(t models.ColumnType) string {
	switch t {
	case models.TypeInt, models.TypeBool:
		return "INTEGER"
	case models.TypeFloat:
		return "REAL"
	case models.TypeDecimal:
		return "NUMERIC"
	}
	return "TEXT"
}

// Write replaces the table with the records of t.
func (sw *SQLiteWriter) Write(t *models.Table) error {
	defs := make([]string, 0, len(t.Columns))
	quoted := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		defs = append(defs, fmt.Sprintf("%q %s", col, sqliteType(sw.types[col])))
		quoted = append(quoted, fmt.Sprintf("%q", col))
	}

	tx, err := sw.db.Begin()
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, SQLiteTable)); err != nil {
		return eris.Wrap(err, "sqlite: drop table")
	}
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %q (%s)`, SQLiteTable, strings.Join(defs, ","))); err != nil {
		return eris.Wrap(err, "sqlite: create table")
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(t.Columns)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, SQLiteTable, strings.Join(quoted, ","), ph))
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for i, r := range t.Records {
		for j, col := range t.Columns {
			args[j] = sqliteValue(r[col], sw.types[col])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return eris.Wrapf(err, "sqlite: insert row %d", i)
		}
	}

	for _, col := range []string{models.ColCity, models.ColRentalCategory} {
		if !t.Has(col) {
			continue
		}
		idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q(%q)`,
			"idx_"+SQLiteTable+"_"+strings.ToLower(col), SQLiteTable, col)
		if _, err := tx.Exec(idx); err != nil {
			return eris.Wrapf(err, "sqlite: index %s", col)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func sqliteValue(v any, t models.ColumnType) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if val {
			return 1
		}
		return 0
	case decimal.Decimal:
		f, _ := val.Float64()
		return f
	case time.Time:
		if t == models.TypeDate {
			return val.UTC().Format(DateLayout)
		}
		return val.UTC().Format(time.RFC3339)
	default:
		return val
	}
}

func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}
