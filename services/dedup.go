package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// DedupKey is the natural key of a listing.
var DedupKey = []string{models.ColAdID, models.ColPoster, models.ColCity, models.ColPrice}

const nullKey = "\x00null"

// Deduplicator drops records whose key repeats an earlier record.
type Deduplicator struct {
	logger *utils.Logger
	key    []string
}

func NewDeduplicator(logger *utils.Logger) *Deduplicator {
	return &Deduplicator{logger: logger, key: DedupKey}
}

// Apply keeps the first record of every key, preserving order, and returns
// the number of records removed.
func (d *Deduplicator) Apply(t *models.Table) int {
	seen := utils.NewKeySet()
	before := t.Len()
	removed := t.Filter(func(r models.Record) bool {
		return seen.Add(recordKey(r, d.key))
	})
	d.logger.Info("[dedup] %d → %d records (dropped %d duplicates)", before, t.Len(), removed)
	return removed
}

func recordKey(r models.Record, cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = keyPart(r[col])
	}
	return strings.Join(parts, "\x1f")
}

func keyPart(v any) string {
	switch val := v.(type) {
	case nil:
		return nullKey
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	}
	return fmt.Sprint(v)
}

// Typer casts records to a declared schema and projects the table onto it.
type Typer struct {
	logger *utils.Logger
	schema []models.Column
}

// NewTyper creates a Typer for schema.
func NewTyper(logger *utils.Logger, schema []models.Column) *Typer {
	return &Typer{logger: logger, schema: schema}
}

// Apply reorders t to the schema, drops columns the schema does not declare
// and casts every cell. A value that cannot be cast becomes null, or the
// zero value in a non-nullable column. It returns the failed casts per
// column.
func (ty *Typer) Apply(t *models.Table) map[string]int {
	failures := make(map[string]int)

	columns := make([]string, 0, len(ty.schema))
	declared := make(map[string]bool, len(ty.schema))
	for _, col := range ty.schema {
		declared[col.Name] = true
		if t.Has(col.Name) {
			columns = append(columns, col.Name)
		}
	}
	var dropped []string
	for _, col := range t.Columns {
		if !declared[col] {
			dropped = append(dropped, col)
		}
	}
	for _, col := range dropped {
		t.DropColumn(col)
	}
	t.Columns = columns

	for _, col := range ty.schema {
		if !t.Has(col.Name) {
			continue
		}
		for _, r := range t.Records {
			v, ok := castValue(r[col.Name], col.Type)
			if !ok {
				failures[col.Name]++
			}
			if v == nil && !col.Nullable {
				v = zeroValue(col.Type)
			}
			r[col.Name] = v
		}
	}

	ty.logger.Info("[typer] Projected to %d columns (dropped %d)", len(columns), len(dropped))
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ty.logger.Warn("[typer] %s: %d values could not be cast and were nulled", name, failures[name])
	}
	return failures
}
