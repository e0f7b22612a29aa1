package services

import (
	"fmt"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// Surrogates holds the run-scoped mapping from raw identifiers to sequential
// integers, one mapping per column. Create one per run with NewSurrogates.
type Surrogates struct {
	ids map[string]map[string]int64
}

func NewSurrogates() *Surrogates {
	return &Surrogates{ids: make(map[string]map[string]int64)}
}

// ID returns the surrogate for value in col, assigning the next integer the
// first time value is seen.
func (s *Surrogates) ID(col, value string) int64 {
	m, ok := s.ids[col]
	if !ok {
		m = make(map[string]int64)
		s.ids[col] = m
	}
	id, ok := m[value]
	if !ok {
		id = int64(len(m))
		m[value] = id
	}
	return id
}

// Len returns the number of distinct values seen in col.
func (s *Surrogates) Len(col string) int {
	return len(s.ids[col])
}

// AnonymizedColumns are replaced by surrogates.
var AnonymizedColumns = []string{models.ColPoster, models.ColAdURL, models.ColAdID}

// Anonymizer replaces identifying columns with run-scoped surrogate integers.
type Anonymizer struct {
	logger *utils.Logger
}

func NewAnonymizer(logger *utils.Logger) *Anonymizer {
	return &Anonymizer{logger: logger}
}

// Apply maps each of AnonymizedColumns through s in record order. Null stays
// null.
func (a *Anonymizer) Apply(t *models.Table, s *Surrogates) {
	for _, col := range AnonymizedColumns {
		if !t.Has(col) {
			continue
		}
		for _, r := range t.Records {
			v := r[col]
			if v == nil {
				continue
			}
			r[col] = s.ID(col, identifierKey(v))
		}
		a.logger.Info("[anonymizer] %s → %d surrogate ids", col, s.Len(col))
	}
}

func identifierKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
