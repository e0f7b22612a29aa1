package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"kijiji-rentals/models"
)

// PostgresTable receives the processed listings.
const PostgresTable = "rental_listings"

// PostgresWriter persists processed listings to PostgreSQL. Every row is
// tagged with the run id so successive runs can be told apart.
type PostgresWriter struct {
	db     *sql.DB
	runID  uuid.UUID
	schema []models.Column
}

// NewPostgresWriter opens a connection to PostgreSQL, creates the table for
// schema if needed, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, runID uuid.UUID, schema []models.Column) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open")
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "postgres: ping failed after retries")
	}

	pw := &PostgresWriter{db: db, runID: runID, schema: schema}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "postgres: migrate")
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	defs := []string{
		"id         BIGSERIAL PRIMARY KEY",
		"run_id     UUID        NOT NULL",
		"created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
	}
	for _, col := range pw.schema {
		def := pq.QuoteIdentifier(col.Name) + " " + postgresType(col.Type)
		if !col.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	table := pq.QuoteIdentifier(PostgresTable)
	_, err := pw.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s
		);

		CREATE INDEX IF NOT EXISTS idx_rental_listings_run      ON %s(run_id);
		CREATE INDEX IF NOT EXISTS idx_rental_listings_city     ON %s(%s);
		CREATE INDEX IF NOT EXISTS idx_rental_listings_category ON %s(%s);
	`, table, strings.Join(defs, ",\n\t\t\t"),
		table,
		table, pq.QuoteIdentifier(models.ColCity),
		table, pq.QuoteIdentifier(models.ColRentalCategory)))
	return err
}

func postgresType(t models.ColumnType) string {
	switch t {
	case models.TypeInt:
		return "BIGINT"
	case models.TypeFloat:
		return "DOUBLE PRECISION"
	case models.TypeBool:
		return "BOOLEAN"
	case models.TypeDecimal:
		return "NUMERIC(12,2)"
	case models.TypeTimestamp:
		return "TIMESTAMPTZ"
	case models.TypeDate:
		return "DATE"
	}
	return "TEXT"
}

// Write batch-inserts every record of t under the writer's run id.
func (pw *PostgresWriter) Write(t *models.Table) error {
	if t.Len() == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < t.Len(); i += batchSize {
		end := i + batchSize
		if end > t.Len() {
			end = t.Len()
		}
		if err := pw.insertBatch(t.Columns, t.Records[i:end]); err != nil {
			return eris.Wrapf(err, "postgres: insert rows %d-%d", i, end)
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(columns []string, batch []models.Record) error {
	width := len(columns) + 1
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*width)

	for idx, r := range batch {
		base := idx * width
		placeholders := make([]string, width)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		valueArgs = append(valueArgs, pw.runID.String())
		for _, col := range columns {
			valueArgs = append(valueArgs, r[col])
		}
	}

	quoted := make([]string, 0, width)
	quoted = append(quoted, "run_id")
	for _, col := range columns {
		quoted = append(quoted, pq.QuoteIdentifier(col))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES %s
	`, pq.QuoteIdentifier(PostgresTable), strings.Join(quoted, ","), strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
