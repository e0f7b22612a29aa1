package services

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kijiji-rentals/models"
)

func sampleTable() *models.Table {
	return tableOf(
		models.Record{models.ColLocation: "Villa A", models.ColPrice: decimal.NewFromInt(200), models.ColCity: "Toronto",
			models.ColRentalCategory: CategoryApartments, models.ColPricePerBedroom: 100.0, models.ColStudents: true,
			models.ColLongitude: -79.4, models.ColLatitude: 43.7},
		models.Record{models.ColLocation: "Studio B", models.ColPrice: decimal.NewFromInt(50), models.ColCity: "Toronto",
			models.ColRentalCategory: CategoryRoom, models.ColPricePerBedroom: 50.0, models.ColStudents: false},
		models.Record{models.ColLocation: "Loft C", models.ColPrice: decimal.NewFromInt(120), models.ColCity: "Ottawa",
			models.ColRentalCategory: CategoryApartments, models.ColSublet: true},
		models.Record{models.ColLocation: "Flat E", models.ColCity: "Ottawa"},
	)
}

func TestInsightCounts(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleTable())

	assert.Equal(t, 4, r.TotalListings)
	assert.Equal(t, 3, r.PricedListings)
	assert.Equal(t, 1, r.GeocodedListings)
	assert.Equal(t, map[string]int{CategoryApartments: 2, CategoryRoom: 1}, r.ListingsByCategory)
	assert.Equal(t, map[string]int{"Toronto": 2, "Ottawa": 2}, r.ListingsByCity)
	assert.Equal(t, 1, r.FlagCounts[models.ColStudents])
	assert.Equal(t, 1, r.FlagCounts[models.ColSublet])
}

func TestInsightPrices(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleTable())

	assert.Equal(t, 123.33, r.AveragePrice)
	assert.Equal(t, 50.0, r.MinPrice)
	assert.Equal(t, 200.0, r.MaxPrice)
	assert.Equal(t, 75.0, r.AveragePerBedroom)

	require.NotNil(t, r.MostExpensive)
	assert.Equal(t, "Villa A", r.MostExpensive[models.ColLocation])
}

func TestInsightEmptyTable(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(models.NewTable())

	assert.Equal(t, 0, r.TotalListings)
	assert.Nil(t, r.MostExpensive)

	var buf bytes.Buffer
	svc.Print(&buf, r)
	assert.Contains(t, buf.String(), "No price data available")
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleTable()))

	out := buf.String()
	assert.Contains(t, out, "KIJIJI RENTALS RUN REPORT")
	assert.Contains(t, out, "$123.33")
	assert.Contains(t, out, "Villa A")
	assert.Contains(t, out, "Ottawa")
	assert.Contains(t, out, CategoryRoom)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
