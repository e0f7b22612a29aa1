package storage

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"kijiji-rentals/models"
)

// CSVReader loads a CSV file with a header row into a Table. Every value is
// a string; empty cells are left out of the record.
type CSVReader struct {
	path string
}

var _ TableReader = (*CSVReader)(nil)

func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

func (c *CSVReader) Read() (*models.Table, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %q", c.path)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: read %q", c.path)
	}
	return t, nil
}

// ReadCSV parses CSV data from r.
func ReadCSV(r io.Reader) (*models.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return models.NewTable(), nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := models.NewTable(header...)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", t.Len()+1)
		}

		rec := make(models.Record, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				rec[col] = row[i]
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}
