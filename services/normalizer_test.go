package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func tableOf(records ...models.Record) *models.Table {
	t := models.NewTable()
	for _, r := range records {
		t.Append(r)
	}
	return t
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"$1,200", "1200", true},
		{"$1,500.00", "1500", true},
		{"1 200,50 $", "1200.5", true},
		{"1.200,00 $", "1200", true},
		{"1.234.567,89", "1234567.89", true},
		{"$1,200.50", "1200.5", true},
		{"1 200 $", "1200", true},
		{"  $950  ", "950", true},
		{"$2,500", "2500", true},
		{"Please Contact", "", false},
		{"Veuillez contacter", "", false},
		{"Gratuit", "", false},
		{"Échange", "", false},
		{"Swap / Trade", "", false},
		{"Free", "", false},
		{"", "", false},
		{"call me", "", false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "parsePrice(%q) ok", tt.raw)
		if tt.wantOK {
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"parsePrice(%q) = %s; want %s", tt.raw, got, tt.want)
		}
	}
}

func TestPriceFromText(t *testing.T) {
	tests := []struct {
		name   string
		record models.Record
		want   int64
		wantOK bool
	}{
		{"title first", models.Record{models.ColTitle: "2br for $1,350 incl.", models.ColDescription: "$900"}, 1350, true},
		{"description fallback", models.Record{models.ColDescription: "Rent is $ 875 per month"}, 875, true},
		{"no amount", models.Record{models.ColTitle: "Nice room", models.ColDescription: "Call for price"}, 0, false},
		{"empty", models.Record{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := priceFromText(tt.record)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got.IntPart())
			}
		})
	}
}

func TestNormalizerPriceFallback(t *testing.T) {
	newTable := func() *models.Table {
		return tableOf(
			models.Record{models.ColPrice: "Please Contact", models.ColTitle: "Room $650 downtown"},
			models.Record{models.ColPrice: "$1,100"},
			models.Record{models.ColTitle: "No price here"},
		)
	}

	table := newTable()
	stats := NewNormalizer(newTestLogger(), NormalizerOptions{PriceFromText: true}).
		Apply(table, utils.NewWorkerPool(2))

	p, ok := table.Records[0].Decimal(models.ColPrice)
	require.True(t, ok)
	assert.Equal(t, int64(650), p.IntPart())
	p, ok = table.Records[1].Decimal(models.ColPrice)
	require.True(t, ok)
	assert.Equal(t, int64(1100), p.IntPart())
	assert.True(t, table.Records[2].Null(models.ColPrice))
	assert.EqualValues(t, 2, stats.PricesParsed.Load())
	assert.EqualValues(t, 1, stats.PricesFromText.Load())
	assert.EqualValues(t, 1, stats.PricesNull.Load())

	table = newTable()
	stats = NewNormalizer(newTestLogger(), NormalizerOptions{}).Apply(table, utils.NewWorkerPool(1))
	assert.True(t, table.Records[0].Null(models.ColPrice))
	assert.EqualValues(t, 2, stats.PricesNull.Load())
}

func TestParseMoveInDate(t *testing.T) {
	march14 := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		raw    string
		want   time.Time
		wantOK bool
	}{
		{"March-14,-2024", march14, true},
		{"mars-14,-2024", march14, true},
		{"Mars-14,-2024", march14, true},
		{"14-mars-2024", march14, true},
		{"1-février-2024", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), true},
		{"Août-3,-2023", time.Date(2023, time.August, 3, 0, 0, 0, 0, time.UTC), true},
		{"décembre-25,-2023", time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC), true},
		{"tomorrow", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := parseMoveInDate(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "parseMoveInDate(%q) ok", tt.raw)
		if tt.wantOK {
			assert.True(t, got.Equal(tt.want), "parseMoveInDate(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParsePostingDate(t *testing.T) {
	want := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	for _, raw := range []string{"2024-03-01T12:30:00", "2024-03-01T12:30:00.000Z", " 2024-03-01T12:30:00Z "} {
		got, ok := parsePostingDate(raw)
		require.True(t, ok, raw)
		assert.True(t, got.Equal(want), raw)
	}

	_, ok := parsePostingDate("01/03/2024")
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		posted time.Time
		moveIn time.Time
		want   int64
	}{
		{time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC), time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), 13},
		{time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), -9},
		{time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 61},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, daysBetween(tt.posted, tt.moveIn))
	}
}

func TestNormalizerDaysInAdvance(t *testing.T) {
	table := tableOf(
		models.Record{models.ColPostingDate: "2024-03-01T09:00:00", models.ColMoveInDate: "avril-1,-2024"},
		models.Record{models.ColPostingDate: "2024-03-01T09:00:00", models.ColMoveInDate: "whenever"},
		models.Record{models.ColPostingDate: "garbage", models.ColMoveInDate: "April-1,-2024"},
	)

	stats := NewNormalizer(newTestLogger(), NormalizerOptions{}).Apply(table, utils.NewWorkerPool(3))

	require.True(t, table.Has(models.ColDaysInAdvance))
	days, ok := table.Records[0].Int(models.ColDaysInAdvance)
	require.True(t, ok)
	assert.Equal(t, int64(31), days)

	assert.True(t, table.Records[1].Null(models.ColMoveInDate))
	assert.True(t, table.Records[1].Null(models.ColDaysInAdvance))

	assert.True(t, table.Records[2].Null(models.ColPostingDate))
	assert.True(t, table.Records[2].Null(models.ColDaysInAdvance))
	assert.EqualValues(t, 1, stats.BadMoveInDates.Load())
}

func TestParseAmenity(t *testing.T) {
	tests := []struct {
		in        any
		want      any
		wantKnown bool
	}{
		{"Yes", true, true},
		{"No", false, true},
		{"Not-Available", false, true},
		{" yes ", true, true},
		{"", nil, true},
		{nil, nil, true},
		{true, true, true},
		{"maybe", nil, false},
		{int64(3), nil, false},
	}
	for _, tt := range tests {
		got, known := parseAmenity(tt.in)
		assert.Equal(t, tt.want, got, "parseAmenity(%v)", tt.in)
		assert.Equal(t, tt.wantKnown, known, "parseAmenity(%v) known", tt.in)
	}
}

func TestIsSentinel(t *testing.T) {
	for _, v := range []any{"", "False", "nan", " NaN "} {
		assert.True(t, isSentinel(v), "%q", v)
	}
	for _, v := range []any{"Apartment", nil, false, "1-Year"} {
		assert.False(t, isSentinel(v), "%v", v)
	}
}

func TestParseParkingAndSize(t *testing.T) {
	parking := []struct {
		raw  string
		want any
	}{
		{"2", 2.0},
		{"1+", 1.0},
		{"Not-Available", 0.0},
		{"No", 0.0},
		{"Yes", nil},
	}
	for _, tt := range parking {
		assert.Equal(t, tt.want, parseParking(tt.raw), "parseParking(%q)", tt.raw)
	}

	size := []struct {
		raw  string
		want any
	}{
		{"850", 850.0},
		{"1,200", 1200.0},
		{"1 050", 1050.0},
		{"Not-Available", nil},
		{"NaN", nil},
	}
	for _, tt := range size {
		assert.Equal(t, tt.want, parseSize(tt.raw), "parseSize(%q)", tt.raw)
	}
}

func TestNormalizerTranslatesValues(t *testing.T) {
	table := tableOf(models.Record{
		models.ColUnitType:        "Appartement",
		models.ColAgreementType:   "Mois-à-mois",
		"Air-Conditioning":        "Non",
		"Wi-Fi-and-More-Internet": "Oui",
		models.ColTitle:           "Oui",
	})

	NewNormalizer(newTestLogger(), NormalizerOptions{}).Apply(table, utils.NewWorkerPool(1))

	r := table.Records[0]
	assert.Equal(t, "Apartment", r[models.ColUnitType])
	assert.Equal(t, "Month-to-month", r[models.ColAgreementType])
	assert.Equal(t, false, r["Air-Conditioning"])
	assert.Equal(t, true, r["Wi-Fi-and-More-Internet"])
	assert.Equal(t, "Oui", r[models.ColTitle])
}

func TestNormalizerNullsSentinelCategories(t *testing.T) {
	table := tableOf(models.Record{models.ColUnitType: "False", models.ColAgreementType: "nan"})

	NewNormalizer(newTestLogger(), NormalizerOptions{}).Apply(table, utils.NewWorkerPool(1))

	assert.True(t, table.Records[0].Null(models.ColUnitType))
	assert.True(t, table.Records[0].Null(models.ColAgreementType))
}

func TestFurnishedRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		record models.Record
		want   any
	}{
		{"synonym only", models.Record{"Meublé": "Yes"}, true},
		{"french value", models.Record{"Meublé": "Oui"}, true},
		{"canonical only", models.Record{"Furnished": "Yes"}, true},
		{"canonical wins", models.Record{"Furnished": "Yes", "Meublé": "Non"}, true},
		{"synonym fills null", models.Record{"Furnished": nil, "Meublé": "Non"}, false},
		{"neither", models.Record{models.ColTitle: "x"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := tableOf(tt.record)
			NewUnifier(newTestLogger()).Apply(table)
			NewNormalizer(newTestLogger(), NormalizerOptions{}).Apply(table, utils.NewWorkerPool(1))
			NewTyper(newTestLogger(), OutputSchema).Apply(table)

			assert.False(t, table.Has("Meublé"))
			assert.Equal(t, tt.want, table.Records[0]["Furnished"])
		})
	}
}
