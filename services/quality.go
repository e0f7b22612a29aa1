package services

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// MinPriceCap is the lowest upper bound applied to prices.
var MinPriceCap = decimal.NewFromInt(10000)

// FilterResult is the number of records a quality rule removed.
type FilterResult struct {
	Rule    string
	Removed int
}

// QualityFilter drops records that are unusable for analysis.
type QualityFilter struct {
	logger *utils.Logger
}

func NewQualityFilter(logger *utils.Logger) *QualityFilter {
	return &QualityFilter{logger: logger}
}

// Apply runs the quality rules in order, then deduplicates.
func (q *QualityFilter) Apply(t *models.Table) []FilterResult {
	priceCap := PriceCap(t)
	q.logger.Info("[quality] Price cap %s", priceCap.StringFixed(2))

	rules := []struct {
		name string
		keep func(models.Record) bool
	}{
		{"price missing or above cap", func(r models.Record) bool {
			p, ok := r.Decimal(models.ColPrice)
			return ok && p.LessThanOrEqual(priceCap)
		}},
		{"price per bedroom missing", func(r models.Record) bool {
			f, ok := r.Float(models.ColPricePerBedroom)
			return ok && !math.IsInf(f, 0) && !math.IsNaN(f)
		}},
		{"unit type missing", func(r models.Record) bool {
			return validCategory(r, models.ColUnitType)
		}},
		{"agreement type missing", func(r models.Record) bool {
			return validCategory(r, models.ColAgreementType)
		}},
		{"city missing", func(r models.Record) bool {
			_, ok := r.String(models.ColCity)
			return ok
		}},
		{"rental category missing", func(r models.Record) bool {
			_, ok := r.String(models.ColRentalCategory)
			return ok
		}},
		{"price per sqft missing", func(r models.Record) bool {
			_, ok := r.Float(models.ColPricePerSqFt)
			return ok
		}},
	}

	results := make([]FilterResult, 0, len(rules)+1)
	for _, rule := range rules {
		removed := t.Filter(rule.keep)
		results = append(results, FilterResult{Rule: rule.name, Removed: removed})
		q.logger.Info("[quality] %-28s removed %d", rule.name, removed)
	}

	removed := NewDeduplicator(q.logger).Apply(t)
	results = append(results, FilterResult{Rule: "duplicate", Removed: removed})
	return results
}

func validCategory(r models.Record, col string) bool {
	s, ok := r.String(col)
	return ok && s != "False"
}

// PriceCap returns max(p99(Price), MinPriceCap), with the percentile linearly
// interpolated between the closest ranks.
func PriceCap(t *models.Table) decimal.Decimal {
	prices := make([]decimal.Decimal, 0, t.Len())
	for _, r := range t.Records {
		if p, ok := r.Decimal(models.ColPrice); ok {
			prices = append(prices, p)
		}
	}
	if len(prices) == 0 {
		return MinPriceCap
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })

	pos := decimal.NewFromFloat(0.99).Mul(decimal.NewFromInt(int64(len(prices) - 1)))
	lo := pos.IntPart()
	p99 := prices[lo]
	if int(lo)+1 < len(prices) {
		frac := pos.Sub(decimal.NewFromInt(lo))
		p99 = p99.Add(prices[lo+1].Sub(prices[lo]).Mul(frac))
	}
	return decimal.Max(p99, MinPriceCap)
}
