package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(t *models.Table) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByCategory: make(map[string]int),
		ListingsByCity:     make(map[string]int),
		FlagCounts:         make(map[string]int),
	}

	if t == nil || t.Len() == 0 {
		return report
	}

	report.TotalListings = t.Len()

	var total, perBedroomTotal float64
	var perBedroomCount int
	for _, r := range t.Records {
		if p, ok := r.Decimal(models.ColPrice); ok {
			price, _ := p.Float64()
			if report.PricedListings == 0 || price < report.MinPrice {
				report.MinPrice = price
			}
			if report.PricedListings == 0 || price > report.MaxPrice {
				report.MaxPrice = price
				report.MostExpensive = r
			}
			total += price
			report.PricedListings++
		}
		if f, ok := r.Float(models.ColPricePerBedroom); ok {
			perBedroomTotal += f
			perBedroomCount++
		}
		if c, ok := r.String(models.ColRentalCategory); ok {
			report.ListingsByCategory[c]++
		}
		if c, ok := r.String(models.ColCity); ok {
			report.ListingsByCity[c]++
		}
		if !r.Null(models.ColLongitude) && !r.Null(models.ColLatitude) {
			report.GeocodedListings++
		}
		for _, col := range SignalColumns {
			if b, _ := r.Bool(col); b {
				report.FlagCounts[col]++
			}
		}
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(total / float64(report.PricedListings))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}
	if perBedroomCount > 0 {
		report.AveragePerBedroom = round2(perBedroomTotal / float64(perBedroomCount))
	}

	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 KIJIJI RENTALS RUN REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings    : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With a price      : \033[1m%d\033[0m\n", r.PricedListings)
	fmt.Fprintf(w, "  Geocoded          : \033[1m%d\033[0m\n", r.GeocodedListings)
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Price Statistics (per month)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price       : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price       : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price       : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
		fmt.Fprintf(w, "  Average per bedroom : \033[1;32m$%.2f\033[0m\n", r.AveragePerBedroom)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	// Most Expensive
	if r.MostExpensive != nil {
		location, _ := r.MostExpensive.String(models.ColLocation)
		category, _ := r.MostExpensive.String(models.ColRentalCategory)
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  Location : %s\n", truncate(location, 50))
		fmt.Fprintf(w, "  Category : %s\n", category)
		fmt.Fprintf(w, "  Price    : \033[1;31m$%.2f/month\033[0m\n", r.MaxPrice)
		fmt.Fprintln(w)
	}

	// Flags
	fmt.Fprintf(w, "\033[1;33m  Text Signals\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, col := range SignalColumns {
		fmt.Fprintf(w, "  %-20s %d\n", col, r.FlagCounts[col])
	}
	fmt.Fprintln(w)

	printCounts(w, "Listings by Category", r.ListingsByCategory, thin)
	printCounts(w, "Listings by City", r.ListingsByCity, thin)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(w io.Writer, title string, counts map[string]int, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  No data\n")
		return
	}

	type keyCount struct {
		key   string
		count int
	}
	var rows []keyCount
	for k, c := range counts {
		rows = append(rows, keyCount{k, c})
	}
	// Sort by count descending, then name
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	if len(rows) > 10 {
		rows = rows[:10]
	}
	for _, kc := range rows {
		bar := strings.Repeat("█", min(kc.count, 30))
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(kc.key, 28), bar, kc.count)
	}
	fmt.Fprintln(w)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
