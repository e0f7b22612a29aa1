package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names shared by the pipeline stages.
const (
	ColTitle       = "Title"
	ColPrice       = "Price"
	ColLocation    = "Location"
	ColDescription = "Description"
	ColPostingDate = "PostingDate"
	ColPoster      = "Poster"
	ColAdURL       = "AdURL"
	ColAdID        = "AdId"
	ColScrapeDate  = "ScrapeDate"
	ColCity        = "City"
	ColURLSlug     = "UrlSlug"

	ColUnitType      = "UnitType"
	ColAgreementType = "Agreement-Type"
	ColBedrooms      = "Bedrooms"
	ColBathrooms     = "Bathrooms"
	ColMoveInDate    = "Move-In-Date"
	ColParking       = "Parking-Included"
	ColSize          = "Size-(sqft)"

	ColRentalCategory = "RentalCategory"
	ColCommercial     = "Commercial"
	ColResidential    = "Residential"
	ColDaysInAdvance  = "PostingDateDaysInAdvance"

	ColPreferenceMale   = "Preference-Male"
	ColPreferenceFemale = "Preference-Female"
	ColMale             = "Male"
	ColFemale           = "Female"
	ColSublet           = "Sublet"
	ColStudents         = "Students"
	ColPreferenceAny    = "Preference-Any"

	ColNumberBedrooms  = "NumberBedrooms"
	ColNumberBathrooms = "NumberBathrooms"
	ColPricePerBedroom = "PricePerBedroom"
	ColPricePerSqFt    = "PricePerSqFt"

	ColLongitude = "Longitude"
	ColLatitude  = "Latitude"
	ColGeohash   = "Geohash"
)

// Record is one listing row. Values are nil (null), string, bool, int64,
// float64, decimal.Decimal or time.Time; a missing key is null.
type Record map[string]any

// Null reports whether col is absent or nil.
func (r Record) Null(col string) bool {
	return r[col] == nil
}

// String returns the value of col when it holds a non-empty string.
func (r Record) String(col string) (string, bool) {
	s, ok := r[col].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Bool returns the value of col when it holds a bool.
func (r Record) Bool(col string) (bool, bool) {
	b, ok := r[col].(bool)
	return b, ok
}

// Int returns the value of col when it holds an int64.
func (r Record) Int(col string) (int64, bool) {
	n, ok := r[col].(int64)
	return n, ok
}

// Float returns the value of col when it holds a float64.
func (r Record) Float(col string) (float64, bool) {
	f, ok := r[col].(float64)
	return f, ok
}

// Decimal returns the value of col when it holds a decimal.Decimal.
func (r Record) Decimal(col string) (decimal.Decimal, bool) {
	d, ok := r[col].(decimal.Decimal)
	return d, ok
}

// Time returns the value of col when it holds a time.Time.
func (r Record) Time(col string) (time.Time, bool) {
	t, ok := r[col].(time.Time)
	return t, ok
}

// Point is a geocoded position.
type Point struct {
	Longitude float64
	Latitude  float64
}
