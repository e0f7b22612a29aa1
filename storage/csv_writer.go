package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"kijiji-rentals/models"
)

// DateLayout is used for date-only columns.
const DateLayout = "2006-01-02"

// CSVWriter writes a table to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu       sync.Mutex
	path     string
	dateCols map[string]bool
}

// NewCSVWriter returns a writer for path. dateCols are written as plain
// dates instead of timestamps.
func NewCSVWriter(path string, dateCols ...string) *CSVWriter {
	w := &CSVWriter{path: path, dateCols: make(map[string]bool, len(dateCols))}
	for _, col := range dateCols {
		w.dateCols[col] = true
	}
	return w
}

// Write creates (or truncates) the file and writes the header row followed by
// every record. Intermediate directories are created automatically.
func (c *CSVWriter) Write(t *models.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return eris.Wrap(err, "csv: create output dir")
	}

	f, err := os.Create(c.path)
	if err != nil {
		return eris.Wrapf(err, "csv: create file %q", c.path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}

	row := make([]string, len(t.Columns))
	for _, r := range t.Records {
		for i, col := range t.Columns {
			row[i] = FormatValue(r[col], c.dateCols[col])
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "csv: flush")
	}
	return f.Close()
}

// Close is a no-op; every Write closes its file.
func (c *CSVWriter) Close() error {
	return nil
}

// FormatValue renders a cell: null is empty, prices carry two decimals and
// times are RFC 3339 (or a plain date when dateOnly).
func FormatValue(v any, dateOnly bool) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case decimal.Decimal:
		return val.StringFixed(2)
	case time.Time:
		if dateOnly {
			return val.UTC().Format(DateLayout)
		}
		return val.UTC().Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
