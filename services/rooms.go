package services

import (
	"regexp"
	"strconv"
	"strings"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// maxTextRooms bounds counts read from free text.
const maxTextRooms = 10

var numberWords = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"un": 1, "une": 1, "deux": 2, "trois": 3, "quatre": 4, "cinq": 5,
	"sept": 7, "huit": 8, "neuf": 9, "dix": 10,
}

const numberWordPattern = `zero|one|two|three|four|five|six|seven|eight|nine|ten|un|une|deux|trois|quatre|cinq|sept|huit|neuf|dix`

var (
	bedTextRegexp  = regexp.MustCompile(`\b(\d|` + numberWordPattern + `)\s*-?\s*(?:bd|bdr|bdrm|bdrms|bed|beds|bedroom|bedrooms|bedrm|br|chambre|chambres)\b`)
	bathTextRegexp = regexp.MustCompile(`(\d*[.,]?\d)\s*-?\s*(?:ba|bath|baths|bathroom|bathrooms|salles? de bains?|sdb)\b`)

	numberWordRegexp = regexp.MustCompile(`\b(?:` + numberWordPattern + `)\b`)
	studioRegexp     = regexp.MustCompile(`bachelor/studio|bachelor|studio`)
	denRegexp        = regexp.MustCompile(`\+|\bden\b|\bbureau\b`)
	decimalRegexp    = regexp.MustCompile(`(\d*)[.,](\d)`)
	bareNumberRegexp = regexp.MustCompile(`^\d+$`)
)

// RoomResolver derives NumberBedrooms and NumberBathrooms from the raw
// Bedrooms/Bathrooms attributes, falling back to the ad text.
type RoomResolver struct {
	logger *utils.Logger
}

func NewRoomResolver(logger *utils.Logger) *RoomResolver {
	return &RoomResolver{logger: logger}
}

// Apply resolves room counts for every record of t.
func (rr *RoomResolver) Apply(t *models.Table, pool *utils.WorkerPool) {
	t.AddColumn(models.ColNumberBedrooms)
	t.AddColumn(models.ColNumberBathrooms)

	pool.ForEach(t.Len(), func(i int) {
		resolveRooms(t.Records[i])
	})

	var beds, baths int
	for _, r := range t.Records {
		if !r.Null(models.ColNumberBedrooms) {
			beds++
		}
		if !r.Null(models.ColNumberBathrooms) {
			baths++
		}
	}
	rr.logger.Info("[rooms] Resolved bedrooms for %d/%d and bathrooms for %d/%d records",
		beds, t.Len(), baths, t.Len())
}

func resolveRooms(r models.Record) {
	var text *string
	lazyText := func() string {
		if text == nil {
			s := searchText(r)
			text = &s
		}
		return *text
	}

	rawBeds, _ := r.String(models.ColBedrooms)
	if n, ok := resolveBedrooms(rawBeds, lazyText); ok {
		r[models.ColNumberBedrooms] = n
	} else {
		r[models.ColNumberBedrooms] = nil
	}

	rawBaths, _ := r.String(models.ColBathrooms)
	if n, ok := resolveBathrooms(rawBaths, lazyText); ok {
		r[models.ColNumberBathrooms] = n
	} else {
		r[models.ColNumberBathrooms] = nil
	}
}

// resolveBedrooms applies, in order: a bare numeral or number-word; the
// first "<n> bedroom" mention in the text when the attribute is empty;
// Bachelor/Studio as one room; then the sum of the digits, plus one for a
// den.
func resolveBedrooms(raw string, text func() string) (int64, bool) {
	s := foldText(strings.TrimSpace(raw))
	if s == "" {
		m := bedTextRegexp.FindStringSubmatch(text())
		if m == nil {
			return 0, false
		}
		n, ok := numberValue(m[1])
		if !ok || n >= maxTextRooms {
			return 0, false
		}
		return n, true
	}

	if n, ok := numberValue(s); ok {
		return n, true
	}

	s = studioRegexp.ReplaceAllString(s, "1")
	s = numberWordRegexp.ReplaceAllStringFunc(s, func(w string) string {
		return strconv.FormatInt(numberWords[w], 10)
	})
	tokens := digitsRegexp.FindAllString(s, -1)
	if len(tokens) == 0 {
		return 0, false
	}
	var sum int64
	for _, tok := range tokens {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0, false
		}
		sum += n
	}
	if denRegexp.MatchString(s) {
		sum++
	}
	return sum, true
}

// numberValue reads a bare numeral or a number-word.
func numberValue(s string) (int64, bool) {
	if bareNumberRegexp.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}
	n, ok := numberWords[s]
	return n, ok
}

// resolveBathrooms reads "1.5", ".5" or "1,5" style decimals, else the first
// digit run. An empty attribute falls back to a "<n> bath" mention.
func resolveBathrooms(raw string, text func() string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		m := bathTextRegexp.FindStringSubmatch(text())
		if m == nil {
			return 0, false
		}
		n, ok := bathroomValue(m[1])
		if !ok || n >= maxTextRooms {
			return 0, false
		}
		return n, true
	}
	return bathroomValue(s)
}

func bathroomValue(s string) (float64, bool) {
	if m := decimalRegexp.FindStringSubmatch(s); m != nil {
		whole := m[1]
		if whole == "" {
			whole = "0"
		}
		f, err := strconv.ParseFloat(whole+"."+m[2], 64)
		return f, err == nil
	}
	m := digitsRegexp.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	return f, err == nil
}
