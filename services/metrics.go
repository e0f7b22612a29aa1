package services

import (
	"github.com/shopspring/decimal"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// MetricsCalculator derives per-unit prices.
type MetricsCalculator struct {
	logger *utils.Logger
}

func NewMetricsCalculator(logger *utils.Logger) *MetricsCalculator {
	return &MetricsCalculator{logger: logger}
}

// Apply sets PricePerBedroom and PricePerSqFt on every record of t.
func (m *MetricsCalculator) Apply(t *models.Table) {
	t.AddColumn(models.ColPricePerBedroom)
	t.AddColumn(models.ColPricePerSqFt)

	var perBedroom, perSqFt int
	for _, r := range t.Records {
		price, hasPrice := r.Decimal(models.ColPrice)

		r[models.ColPricePerBedroom] = nil
		if beds, ok := r.Int(models.ColNumberBedrooms); ok && hasPrice {
			if v, ok := pricePer(price, decimal.NewFromInt(beds)); ok {
				r[models.ColPricePerBedroom] = v
				perBedroom++
			}
		}

		r[models.ColPricePerSqFt] = nil
		if size, ok := r.Float(models.ColSize); ok && hasPrice {
			if v, ok := pricePer(price, decimal.NewFromFloat(size)); ok {
				r[models.ColPricePerSqFt] = v
				perSqFt++
			}
		}
	}

	m.logger.Info("[metrics] Price per bedroom for %d records, per sqft for %d records", perBedroom, perSqFt)
}

// pricePer returns price/denominator rounded to a whole number. A zero
// denominator has no result.
func pricePer(price, denominator decimal.Decimal) (float64, bool) {
	if denominator.IsZero() {
		return 0, false
	}
	v, _ := price.DivRound(denominator, 0).Float64()
	return v, true
}
