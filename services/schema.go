package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kijiji-rentals/models"
)

// AmenityColumns hold Yes/No/Not-Available attributes.
var AmenityColumns = []string{
	"Appliances-Laundry-(In-Unit)",
	"Appliances-Dishwasher",
	"Appliances-Fridge-/-Freezer",
	"Personal-Outdoor-Space-Balcony",
	"Amenities-Gym",
	"Amenities-Bicycle-Parking",
	"Amenities-Storage-Space",
	"Amenities-Elevator-in-Building",
	"Furnished",
	"Air-Conditioning",
	"Utilities-Included-Hydro",
	"Utilities-Included-Heat",
	"Utilities-Included-Water",
	"Wi-Fi-and-More-Internet",
	"Wi-Fi-and-More-Cable-/-TV",
	"Amenities-Pool",
	"Elevator-Accessibility-Features-Wheelchair-accessible",
	"Barrier-free-Entrances-and-Ramps",
	"Visual-Aids",
	"Accessible-Washrooms-in-Suite",
	"Appliances-Laundry-(In-Building)",
	"Personal-Outdoor-Space-Yard",
	"Amenities-Concierge",
	"Amenities-24-Hour-Security",
	"Elevator-Accessibility-Features-Braille-Labels",
	"Elevator-Accessibility-Features-Audio-Prompts",
}

func column(name string, t models.ColumnType, nullable bool) models.Column {
	return models.Column{Name: name, Type: t, Nullable: nullable}
}

func amenity(name string) models.Column {
	return models.Column{Name: name, Type: models.TypeBool, Nullable: true}
}

// OutputSchema is the ordered list of columns written by the pipeline.
var OutputSchema = []models.Column{
	column(models.ColPrice, models.TypeDecimal, true),
	column(models.ColLocation, models.TypeString, true),
	column(models.ColPostingDate, models.TypeTimestamp, true),
	column(models.ColPoster, models.TypeInt, true),
	column(models.ColAdID, models.TypeInt, true),
	column(models.ColScrapeDate, models.TypeString, true),
	column(models.ColUnitType, models.TypeString, true),
	column(models.ColBedrooms, models.TypeString, true),
	column(models.ColBathrooms, models.TypeString, true),
	amenity("Appliances-Laundry-(In-Unit)"),
	amenity("Appliances-Dishwasher"),
	amenity("Appliances-Fridge-/-Freezer"),
	amenity("Personal-Outdoor-Space-Balcony"),
	amenity("Amenities-Gym"),
	amenity("Amenities-Bicycle-Parking"),
	amenity("Amenities-Storage-Space"),
	amenity("Amenities-Elevator-in-Building"),
	column(models.ColParking, models.TypeFloat, true),
	column(models.ColAgreementType, models.TypeString, true),
	column(models.ColMoveInDate, models.TypeDate, true),
	column("Pet-Friendly", models.TypeString, true),
	column(models.ColSize, models.TypeFloat, true),
	amenity("Furnished"),
	amenity("Air-Conditioning"),
	column("Smoking-Permitted", models.TypeString, true),
	amenity("Utilities-Included-Hydro"),
	amenity("Utilities-Included-Heat"),
	amenity("Utilities-Included-Water"),
	amenity("Wi-Fi-and-More-Internet"),
	amenity("Wi-Fi-and-More-Cable-/-TV"),
	amenity("Amenities-Pool"),
	amenity("Elevator-Accessibility-Features-Wheelchair-accessible"),
	amenity("Barrier-free-Entrances-and-Ramps"),
	amenity("Visual-Aids"),
	amenity("Accessible-Washrooms-in-Suite"),
	amenity("Appliances-Laundry-(In-Building)"),
	amenity("Personal-Outdoor-Space-Yard"),
	amenity("Amenities-Concierge"),
	amenity("Amenities-24-Hour-Security"),
	column("More-Info", models.TypeString, true),
	amenity("Elevator-Accessibility-Features-Braille-Labels"),
	column(models.ColCity, models.TypeString, true),
	column(models.ColRentalCategory, models.TypeString, true),
	column(models.ColCommercial, models.TypeBool, false),
	column(models.ColResidential, models.TypeBool, false),
	column(models.ColDaysInAdvance, models.TypeInt, true),
	column(models.ColPreferenceMale, models.TypeBool, false),
	column(models.ColPreferenceFemale, models.TypeBool, false),
	column(models.ColMale, models.TypeBool, false),
	column(models.ColFemale, models.TypeBool, false),
	column(models.ColSublet, models.TypeBool, false),
	column(models.ColStudents, models.TypeBool, false),
	column(models.ColPreferenceAny, models.TypeBool, false),
	column(models.ColNumberBedrooms, models.TypeInt, true),
	column(models.ColNumberBathrooms, models.TypeFloat, true),
	column(models.ColPricePerBedroom, models.TypeFloat, true),
	column(models.ColPricePerSqFt, models.TypeFloat, true),
	amenity("Elevator-Accessibility-Features-Audio-Prompts"),
	column(models.ColLongitude, models.TypeFloat, true),
	column(models.ColLatitude, models.TypeFloat, true),
	column(models.ColGeohash, models.TypeString, true),
}

// DateColumns returns the date-only columns of schema.
func DateColumns(schema []models.Column) []string {
	var cols []string
	for _, c := range schema {
		if c.Type == models.TypeDate {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// zeroValue is used for uncastable cells of non-nullable columns.
func zeroValue(t models.ColumnType) any {
	switch t {
	case models.TypeString:
		return ""
	case models.TypeInt:
		return int64(0)
	case models.TypeFloat:
		return 0.0
	case models.TypeBool:
		return false
	case models.TypeDecimal:
		return decimal.Zero
	case models.TypeTimestamp, models.TypeDate:
		return time.Time{}
	}
	return nil
}

// castValue coerces v to t. Null input yields null with ok true; ok is false
// only when a non-null value cannot be represented as t.
func castValue(v any, t models.ColumnType) (any, bool) {
	if v == nil {
		return nil, true
	}
	if s, isString := v.(string); isString && t != models.TypeString && strings.TrimSpace(s) == "" {
		return nil, true
	}

	switch t {
	case models.TypeString:
		return castString(v), true
	case models.TypeInt:
		return castInt(v)
	case models.TypeFloat:
		return castFloat(v)
	case models.TypeBool:
		return castBool(v)
	case models.TypeDecimal:
		return castDecimal(v)
	case models.TypeTimestamp:
		return castTime(v, false)
	case models.TypeDate:
		return castTime(v, true)
	}
	return nil, false
}

func castString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case decimal.Decimal:
		return val.String()
	}
	return fmt.Sprint(v)
}

func castInt(v any) (any, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return nil, false
		}
		return int64(val), true
	case decimal.Decimal:
		if !val.Equal(val.Truncate(0)) {
			return nil, false
		}
		return val.IntPart(), true
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return castInt(f)
		}
	}
	return nil, false
}

func castFloat(v any) (any, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case decimal.Decimal:
		f, _ := val.Float64()
		return f, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, true
		}
	}
	return nil, false
}

func castBool(v any) (any, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		b, known := parseAmenity(val)
		return b, known && b != nil
	}
	return nil, false
}

func castDecimal(v any) (any, bool) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, true
	case int64:
		return decimal.NewFromInt(val), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, false
		}
		return decimal.NewFromFloat(val), true
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d, true
		}
	}
	return nil, false
}

var timeLayouts = []string{time.RFC3339, PostingDateLayout, "2006-01-02"}

func castTime(v any, dateOnly bool) (any, bool) {
	var ts time.Time
	switch val := v.(type) {
	case time.Time:
		ts = val
	case string:
		s := strings.TrimSpace(val)
		parsed := false
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				ts, parsed = t, true
				break
			}
		}
		if !parsed {
			return nil, false
		}
	default:
		return nil, false
	}

	ts = ts.UTC()
	if dateOnly {
		ts = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return ts, true
}
