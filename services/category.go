package services

import (
	"net/url"
	"strings"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// Rental categories.
const (
	CategoryApartments = "Apartments-Condos"
	CategoryCommercial = "Commercial-Office-Space"
	CategoryRoom       = "Room-Rental-Roommate"
	CategoryShortTerm  = "Short-Term-Rental"
	CategoryStorage    = "Storage-Parking"
)

// categorySegments maps the first URL path segment of an ad onto its category.
var categorySegments = map[string]string{
	"v-apartments-condos":            CategoryApartments,
	"v-appartement-condo":            CategoryApartments,
	"v-commercial-office-space":      CategoryCommercial,
	"v-espace-commercial-bureau":     CategoryCommercial,
	"v-room-rental-roommate":         CategoryRoom,
	"v-chambres-a-louer-colocataire": CategoryRoom,
	"v-short-term-rental":            CategoryShortTerm,
	"v-location-court-terme":         CategoryShortTerm,
	"v-storage-parking":              CategoryStorage,
	"v-entreposage-stationnement":    CategoryStorage,
}

var commercialCategories = map[string]bool{
	CategoryCommercial: true,
	CategoryStorage:    true,
}

// Classifier derives the rental category, the commercial/residential flags,
// the city and the descriptive slug from each ad's URL.
type Classifier struct {
	logger *utils.Logger
}

func NewClassifier(logger *utils.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Apply sets RentalCategory, Commercial, Residential and UrlSlug on every
// record, and City where the record has none. It returns the number of
// records whose category could not be determined.
func (c *Classifier) Apply(t *models.Table) int {
	for _, col := range []string{
		models.ColCity, models.ColRentalCategory, models.ColCommercial,
		models.ColResidential, models.ColURLSlug,
	} {
		t.AddColumn(col)
	}

	unknown := 0
	for _, r := range t.Records {
		raw, _ := r.String(models.ColAdURL)
		segments := urlSegments(raw)

		category := categoryOf(segments)
		if category == "" {
			unknown++
			r[models.ColRentalCategory] = nil
		} else {
			r[models.ColRentalCategory] = category
		}
		r[models.ColCommercial] = category != "" && commercialCategories[category]
		r[models.ColResidential] = category != "" && !commercialCategories[category]

		if r.Null(models.ColCity) && len(segments) > 1 && segments[1] != "" {
			r[models.ColCity] = titleWords(segments[1])
		}
		if len(segments) > 2 && segments[2] != "" {
			r[models.ColURLSlug] = strings.ReplaceAll(segments[2], "-", " ")
		}
	}

	c.logger.Info("[category] Classified %d records (%d unknown)", t.Len(), unknown)
	return unknown
}

// urlSegments splits the path of an absolute or site-relative ad URL.
func urlSegments(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func categoryOf(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return categorySegments[strings.ToLower(segments[0])]
}
