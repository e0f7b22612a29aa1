package models

// InsightReport holds the summary statistics printed at the end of a run.
type InsightReport struct {
	TotalListings      int
	PricedListings     int
	AveragePrice       float64
	MinPrice           float64
	MaxPrice           float64
	AveragePerBedroom  float64
	GeocodedListings   int
	MostExpensive      Record
	ListingsByCategory map[string]int
	ListingsByCity     map[string]int
	FlagCounts         map[string]int
}
