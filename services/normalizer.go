package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// PostingDateLayout is the scraper's posting timestamp format.
const PostingDateLayout = "2006-01-02T15:04:05"

var moveInLayouts = []string{"January-2,-2006", "2-January-2006"}

var (
	// priceTextRegexp captures a "$1,200" style amount in free text
	priceTextRegexp = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)`)
	digitsRegexp    = regexp.MustCompile(`\d+`)
	wordRegexp      = regexp.MustCompile(`[a-z]+`)
)

// valueTranslations maps French attribute values onto the English ones.
var valueTranslations = map[string]string{
	"Oui":            "Yes",
	"Non":            "No",
	"Non-disponible": "Not-Available",
	"Studio":         "Bachelor/Studio",
	"Limité":         "Limited",

	"Appartement":         "Apartment",
	"Maison":              "House",
	"Maison-en-rangée":    "Townhouse",
	"Sous-sol":            "Basement",
	"Bail-d'un-an":        "1-Year",
	"1-an":                "1-Year",
	"Mois-par-mois":       "Month-to-month",
	"Mois-à-mois":         "Month-to-month",
	"Extérieur-seulement": "Outdoors-only",
}

// priceTranslations maps folded French price placeholders onto English ones.
var priceTranslations = map[string]string{
	"veuillez contacter": "Please Contact",
	"gratuit":            "Free",
	"echange":            "Swap / Trade",
}

// pricePlaceholders are compared with whitespace removed and lower-cased.
var pricePlaceholders = map[string]bool{
	"pleasecontact": true,
	"free":          true,
	"swap/trade":    true,
}

var frenchMonths = map[string]string{
	"janvier":   "January",
	"fevrier":   "February",
	"mars":      "March",
	"avril":     "April",
	"mai":       "May",
	"juin":      "June",
	"juillet":   "July",
	"aout":      "August",
	"septembre": "September",
	"octobre":   "October",
	"novembre":  "November",
	"decembre":  "December",
}

// freeTextColumns are never run through valueTranslations.
var freeTextColumns = map[string]bool{
	models.ColTitle:       true,
	models.ColDescription: true,
	models.ColLocation:    true,
	models.ColPoster:      true,
	models.ColAdURL:       true,
	models.ColAdID:        true,
	models.ColPostingDate: true,
	models.ColScrapeDate:  true,
	models.ColPrice:       true,
	models.ColCity:        true,
	models.ColURLSlug:     true,
}

// NormalizerOptions tunes the field normalizer.
type NormalizerOptions struct {
	// PriceFromText enables the "$<digits>" fallback over title and
	// description when the structured price is missing.
	PriceFromText bool
}

// NormalizeStats counts what the normalizer did to a batch.
type NormalizeStats struct {
	PricesParsed   atomic.Int64
	PricesFromText atomic.Int64
	PricesNull     atomic.Int64
	BadBooleans    atomic.Int64
	BadMoveInDates atomic.Int64
}

// Normalizer parses and types the raw string fields of each record.
type Normalizer struct {
	logger *utils.Logger
	opts   NormalizerOptions
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(logger *utils.Logger, opts NormalizerOptions) *Normalizer {
	return &Normalizer{logger: logger, opts: opts}
}

// Apply normalizes every record of t, sharding records across pool.
func (n *Normalizer) Apply(t *models.Table, pool *utils.WorkerPool) *NormalizeStats {
	stats := &NormalizeStats{}

	translated := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if !freeTextColumns[col] {
			translated = append(translated, col)
		}
	}
	booleans := make([]string, 0, len(AmenityColumns))
	for _, col := range AmenityColumns {
		if t.Has(col) {
			booleans = append(booleans, col)
		}
	}
	if t.Has(models.ColMoveInDate) && t.Has(models.ColPostingDate) {
		t.AddColumn(models.ColDaysInAdvance)
	}
	t.AddColumn(models.ColPrice)

	pool.ForEach(t.Len(), func(i int) {
		n.normalize(t.Records[i], translated, booleans, stats)
	})

	n.logger.Info("[normalizer] Prices: %d parsed (%d from text), %d null",
		stats.PricesParsed.Load(), stats.PricesFromText.Load(), stats.PricesNull.Load())
	if bad := stats.BadBooleans.Load(); bad > 0 {
		n.logger.Warn("[normalizer] %d amenity values were not Yes/No/Not-Available", bad)
	}
	if bad := stats.BadMoveInDates.Load(); bad > 0 {
		n.logger.Warn("[normalizer] %d move-in dates could not be parsed", bad)
	}
	return stats
}

func (n *Normalizer) normalize(r models.Record, translated, booleans []string, stats *NormalizeStats) {
	for _, col := range translated {
		if s, ok := r.String(col); ok {
			if v, found := valueTranslations[strings.TrimSpace(s)]; found {
				r[col] = v
			}
		}
	}

	raw, _ := r.String(models.ColPrice)
	price, ok := parsePrice(raw)
	if !ok && n.opts.PriceFromText {
		if price, ok = priceFromText(r); ok {
			stats.PricesFromText.Add(1)
		}
	}
	if ok {
		r[models.ColPrice] = price
		stats.PricesParsed.Add(1)
	} else {
		r[models.ColPrice] = nil
		stats.PricesNull.Add(1)
	}

	if s, ok := r.String(models.ColPostingDate); ok {
		if ts, ok := parsePostingDate(s); ok {
			r[models.ColPostingDate] = ts
		} else {
			r[models.ColPostingDate] = nil
		}
	}

	for _, col := range booleans {
		v, known := parseAmenity(r[col])
		if !known {
			stats.BadBooleans.Add(1)
		}
		r[col] = v
	}

	for _, col := range []string{models.ColUnitType, models.ColAgreementType} {
		if isSentinel(r[col]) {
			r[col] = nil
		}
	}

	if s, ok := r.String(models.ColMoveInDate); ok {
		if d, ok := parseMoveInDate(s); ok {
			r[models.ColMoveInDate] = d
		} else {
			r[models.ColMoveInDate] = nil
			stats.BadMoveInDates.Add(1)
		}
	}
	if moveIn, ok := r.Time(models.ColMoveInDate); ok {
		if posted, ok := r.Time(models.ColPostingDate); ok {
			r[models.ColDaysInAdvance] = daysBetween(posted, moveIn)
		}
	}

	if s, ok := r.String(models.ColParking); ok {
		r[models.ColParking] = parseParking(s)
	}
	if s, ok := r.String(models.ColSize); ok {
		r[models.ColSize] = parseSize(s)
	}
}

// parsePrice turns a structured price string into a decimal. Placeholders
// and unparseable text report false.
//
//	"$1,200"         → 1200
//	"1 200,50 $"     → 1200.50
//	"1.200,00 $"     → 1200
//	"Please Contact" → false
func parsePrice(raw string) (decimal.Decimal, bool) {
	s := normaliseText(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}
	if v, ok := priceTranslations[foldText(s)]; ok {
		s = v
	}
	if pricePlaceholders[strings.ToLower(removeSpaces(s))] {
		return decimal.Decimal{}, false
	}

	s = removeSpaces(strings.ReplaceAll(s, "$", ""))
	comma, dot := strings.LastIndexByte(s, ','), strings.LastIndexByte(s, '.')
	switch {
	case dot >= 0 && comma > dot:
		// "1.200,00": the last separator is the decimal one.
		s = strings.ReplaceAll(s[:comma], ".", "") + "." + s[comma+1:]
	case comma >= 0 && dot < 0 && isDecimalComma(s[comma+1:]):
		s = s[:comma] + "." + s[comma+1:]
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func isDecimalComma(frac string) bool {
	return len(frac) == 2 && frac[0] >= '0' && frac[0] <= '9' && frac[1] >= '0' && frac[1] <= '9'
}

// priceFromText looks for the first "$<digits>" amount in the title, then the
// description.
func priceFromText(r models.Record) (decimal.Decimal, bool) {
	for _, col := range []string{models.ColTitle, models.ColDescription} {
		s, ok := r.String(col)
		if !ok {
			continue
		}
		m := priceTextRegexp.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// parsePostingDate reads the first 19 characters so "Z" and fractional
// second suffixes are tolerated.
func parsePostingDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if len(s) > len(PostingDateLayout) {
		s = s[:len(PostingDateLayout)]
	}
	ts, err := time.Parse(PostingDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

// parseAmenity maps Yes/No/Not-Available onto a nullable bool. The second
// result is false when the value was present but unrecognised.
func parseAmenity(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "":
			return nil, true
		case "yes", "true", "1":
			return true, true
		case "no", "not-available", "false", "0":
			return false, true
		}
	}
	return nil, false
}

func isSentinel(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "nan":
		return true
	}
	return false
}

// parseMoveInDate accepts English or French month names in either
// "Month-Day,-Year" or "Day-Month-Year" order.
func parseMoveInDate(raw string) (time.Time, bool) {
	s := wordRegexp.ReplaceAllStringFunc(foldText(strings.TrimSpace(raw)), func(w string) string {
		if en, ok := frenchMonths[w]; ok {
			return en
		}
		return w
	})
	for _, layout := range moveInLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// daysBetween returns the calendar-day difference from the posting date to
// the move-in date; negative when the move-in date is earlier.
func daysBetween(posted, moveIn time.Time) int64 {
	from := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(moveIn.Year(), moveIn.Month(), moveIn.Day(), 0, 0, 0, 0, time.UTC)
	return int64(math.Round(to.Sub(from).Hours() / 24))
}

func parseParking(raw string) any {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "not-available", "no":
		return 0.0
	}
	m := digitsRegexp.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return n
}

func parseSize(raw string) any {
	s := strings.ReplaceAll(removeSpaces(raw), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
