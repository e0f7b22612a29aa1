package geocode

import (
	"context"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// GeohashPrecision is the length of the Geohash column (about 150m).
const GeohashPrecision = 7

// Stats summarises an annotation pass.
type Stats struct {
	Locations int // unique locations looked up
	Cached    int // answered from the seed cache
	Resolved  int // found with the full or trimmed location
	Fallback  int // resolved only with the default city
	Failed    int
}

// Annotator adds Longitude, Latitude and Geohash to records by geocoding
// each unique Location once.
type Annotator struct {
	geocoder Geocoder
	logger   *utils.Logger
	fallback string
	cache    map[string]*models.Point
}

// NewAnnotator creates an Annotator. city and country form the last-resort
// query for locations the service cannot place.
func NewAnnotator(g Geocoder, city, country string, logger *utils.Logger) *Annotator {
	return &Annotator{
		geocoder: g,
		logger:   logger,
		fallback: FallbackQuery(city, country),
		cache:    make(map[string]*models.Point),
	}
}

// FallbackQuery builds the "City, Country" query.
func FallbackQuery(city, country string) string {
	title := cases.Title(language.English)
	parts := make([]string, 0, 2)
	for _, p := range []string{city, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, title.String(strings.ToLower(p)))
		}
	}
	return strings.Join(parts, ", ")
}

// Seed caches the coordinates already present in a previous output so
// those locations are not queried again. It returns the number of cached
// locations.
func (a *Annotator) Seed(prev *models.Table) int {
	if prev == nil {
		return 0
	}
	for _, r := range prev.Records {
		loc, ok := r.String(models.ColLocation)
		if !ok {
			continue
		}
		if p, ok := pointOf(r); ok {
			a.cache[loc] = p
		}
	}
	return len(a.cache)
}

// Apply annotates every record of t that lacks coordinates. It stops early
// and returns the context error when ctx is cancelled; records processed so
// far keep their coordinates.
func (a *Annotator) Apply(ctx context.Context, t *models.Table) (Stats, error) {
	t.AddColumn(models.ColLongitude)
	t.AddColumn(models.ColLatitude)
	t.AddColumn(models.ColGeohash)

	var stats Stats
	looked := make(map[string]bool)
	for i, r := range t.Records {
		if p, ok := pointOf(r); ok {
			setPoint(r, p)
			continue
		}
		loc, ok := r.String(models.ColLocation)
		if !ok {
			continue
		}

		if _, done := looked[loc]; !done {
			if err := ctx.Err(); err != nil {
				a.logger.Warn("[geocode] Stopped after %d/%d records", i, t.Len())
				return stats, eris.Wrap(err, "geocode: annotate")
			}
			looked[loc] = true
			stats.Locations++
			if _, cached := a.cache[loc]; cached {
				stats.Cached++
			} else {
				a.cache[loc] = a.lookup(ctx, loc, &stats)
			}
		}

		if p := a.cache[loc]; p != nil {
			setPoint(r, p)
		}
	}

	a.logger.Info("[geocode] %d locations: %d cached, %d resolved, %d via %q, %d failed",
		stats.Locations, stats.Cached, stats.Resolved, stats.Fallback, a.fallback, stats.Failed)
	return stats, nil
}

// lookup tries the full location, then without its last comma-separated
// part, then the fallback query.
func (a *Annotator) lookup(ctx context.Context, loc string, stats *Stats) *models.Point {
	for _, q := range Candidates(loc) {
		if p := a.query(ctx, q); p != nil {
			stats.Resolved++
			return p
		}
	}
	if a.fallback != "" {
		if p := a.query(ctx, a.fallback); p != nil {
			stats.Fallback++
			return p
		}
	}
	stats.Failed++
	a.logger.Warn("[geocode] Could not retrieve coordinates for %q", loc)
	return nil
}

func (a *Annotator) query(ctx context.Context, q string) *models.Point {
	p, err := a.geocoder.Geocode(ctx, q)
	if err != nil {
		a.logger.Warn("[geocode] %v", err)
		return nil
	}
	return p
}

// Candidates returns the location queries tried before the fallback.
func Candidates(loc string) []string {
	loc = strings.TrimSpace(loc)
	out := []string{loc}
	if i := strings.LastIndexByte(loc, ','); i > 0 {
		if trimmed := strings.TrimSpace(loc[:i]); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func setPoint(r models.Record, p *models.Point) {
	r[models.ColLongitude] = p.Longitude
	r[models.ColLatitude] = p.Latitude
	r[models.ColGeohash] = geohash.EncodeWithPrecision(p.Latitude, p.Longitude, GeohashPrecision)
}

func pointOf(r models.Record) (*models.Point, bool) {
	lon, ok := floatValue(r[models.ColLongitude])
	if !ok {
		return nil, false
	}
	lat, ok := floatValue(r[models.ColLatitude])
	if !ok {
		return nil, false
	}
	return &models.Point{Longitude: lon, Latitude: lat}, true
}

func floatValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}
