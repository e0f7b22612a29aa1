package services

import (
	"regexp"
	"strings"
	"sync/atomic"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// Vocabularies are matched against lower-cased, accent-folded text.
const (
	manWords    = `male|males|man|men|guy|guys|boy|boys|gentleman|gentlemen|gentelman|homme|hommes|garcon|garcons|gars`
	womanWords  = `female|females|woman|women|womens|girl|girls|gal|gals|lady|ladies|femme|femmes|fille|filles|feamle|femal`
	onlyWords   = `only|seulement|uniquement|exclusivement`
	preferWords = `prefer|preferred|prefered|preferably|preference|prefere|preferee|preferes|preferees`
	forWords    = `for|pour`
	allWords    = `all|tous|toutes`
	noWords     = `no|pas de`
	subletWords = `sublet|sublets|subletting|sublease|subleasing|sous[- ]location|sous[- ]louer`
	studentWord = `students?|etudiante?s?`
)

// sentenceGap matches a short run of text that does not cross a sentence end.
func sentenceGap(max string) string {
	return `[^.!?;\n]{0,` + max + `}`
}

// Rule is one named pattern of a signal family. A match whose text also
// contains Exclude does not count.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Exclude *regexp.Regexp
}

func (r Rule) matches(text string) bool {
	if r.Exclude == nil {
		return r.Pattern.MatchString(text)
	}
	for _, loc := range r.Pattern.FindAllStringIndex(text, -1) {
		if !r.Exclude.MatchString(text[loc[0]:loc[1]]) {
			return true
		}
	}
	return false
}

// Family is a flag that holds when any of its rules matches.
type Family struct {
	Column string
	Rules  []Rule
}

// Match reports whether any rule matches text.
func (f Family) Match(text string) bool {
	for _, rule := range f.Rules {
		if rule.matches(text) {
			return true
		}
	}
	return false
}

// Matching returns the names of the rules that match text.
func (f Family) Matching(text string) []string {
	var names []string
	for _, rule := range f.Rules {
		if rule.matches(text) {
			names = append(names, rule.Name)
		}
	}
	return names
}

func rule(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// gapRule is a rule whose match may not span a word of the opposite group
// or a negation, so "no boys, girls only" and "girls only, no boys" both read
// as a preference for girls alone.
func gapRule(name, pattern, other string) Rule {
	r := rule(name, pattern)
	r.Exclude = regexp.MustCompile(other + `|` + words(noWords))
	return r
}

func words(alternatives string) string {
	return `\b(?:` + alternatives + `)\b`
}

// preferenceFamily builds the occupant preference rules for the group named
// by self, with other as the opposite group.
func preferenceFamily(column, self, other string) Family {
	s, o := words(self), words(other)
	only, prefer := words(onlyWords), words(preferWords)
	return Family{
		Column: column,
		Rules: []Rule{
			gapRule("word-only", s+sentenceGap("20")+only, o),
			gapRule("only-word", only+sentenceGap("10")+s, o),
			rule("for-word", `\b(?:`+forWords+`)\s+(?:\w+\s+){0,2}?`+s),
			gapRule("word-prefer", s+sentenceGap("15")+prefer, o),
			gapRule("prefer-word", prefer+sentenceGap("15")+s, o),
			rule("all-word", `\b(?:`+allWords+`)[\s-]+(?:\w+\s+)?`+s),
			rule("no-other", `\b(?:`+noWords+`)\s+`+o),
		},
	}
}

func anyWordFamily(column, alternatives string) Family {
	return Family{Column: column, Rules: []Rule{rule("any", words(alternatives))}}
}

var (
	preferenceMale   = preferenceFamily(models.ColPreferenceMale, manWords, womanWords)
	preferenceFemale = preferenceFamily(models.ColPreferenceFemale, womanWords, manWords)

	mentionFamilies = []Family{
		anyWordFamily(models.ColMale, manWords),
		anyWordFamily(models.ColFemale, womanWords),
		anyWordFamily(models.ColSublet, subletWords),
		anyWordFamily(models.ColStudents, studentWord),
		anyWordFamily(models.ColPreferenceAny, preferWords),
	}
)

// SignalColumns are the flags set by the SignalExtractor.
var SignalColumns = []string{
	models.ColPreferenceMale, models.ColPreferenceFemale,
	models.ColMale, models.ColFemale,
	models.ColSublet, models.ColStudents, models.ColPreferenceAny,
}

// SignalExtractor derives occupancy flags from the free text of each ad.
type SignalExtractor struct {
	logger *utils.Logger
}

func NewSignalExtractor(logger *utils.Logger) *SignalExtractor {
	return &SignalExtractor{logger: logger}
}

// Apply sets every SignalColumns flag on each record of t. It returns the
// number of records where both preference families matched and were reset.
func (e *SignalExtractor) Apply(t *models.Table, pool *utils.WorkerPool) int {
	for _, col := range SignalColumns {
		t.AddColumn(col)
	}

	var conflicts atomic.Int64
	pool.ForEach(t.Len(), func(i int) {
		if extractSignals(t.Records[i]) {
			conflicts.Add(1)
		}
	})

	counts := make(map[string]int, len(SignalColumns))
	for _, r := range t.Records {
		for _, col := range SignalColumns {
			if b, _ := r.Bool(col); b {
				counts[col]++
			}
		}
	}
	e.logger.Info("[signals] male pref %d | female pref %d | students %d | sublet %d | conflicts reset %d",
		counts[models.ColPreferenceMale], counts[models.ColPreferenceFemale],
		counts[models.ColStudents], counts[models.ColSublet], conflicts.Load())
	return int(conflicts.Load())
}

// extractSignals sets the flags of r and reports whether the preference
// conflict pass fired.
func extractSignals(r models.Record) bool {
	text := searchText(r)

	male := preferenceMale.Match(text)
	female := preferenceFemale.Match(text)
	conflict := male && female
	if conflict {
		male, female = false, false
	}
	r[models.ColPreferenceMale] = male
	r[models.ColPreferenceFemale] = female

	for _, f := range mentionFamilies {
		r[f.Column] = f.Match(text)
	}
	return conflict
}

// searchText joins title, description and URL slug into one lower-cased,
// accent-folded line without markup.
func searchText(r models.Record) string {
	parts := make([]string, 0, 3)
	for _, col := range []string{models.ColTitle, models.ColDescription, models.ColURLSlug} {
		if s, ok := r.String(col); ok {
			parts = append(parts, stripHTML(s))
		}
	}
	return foldText(normaliseText(strings.Join(parts, " ")))
}
