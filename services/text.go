package services

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents removes combining marks so "Février" and "fevrier" compare
// equal after lower-casing.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// foldText lower-cases and accent-folds s for keyword matching. Casers are
// stateful and not safe for concurrent use, so one is built per call.
func foldText(s string) string {
	return foldAccents(cases.Lower(language.French).String(s))
}

// stripHTML returns the text content of s when it carries markup.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

// normaliseText strips leading/trailing whitespace and collapses internal
// whitespace, including non-breaking spaces and line breaks.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// removeSpaces drops every whitespace rune.
func removeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if isSpace(r) {
			return -1
		}
		return r
	}, s)
}

// titleWords turns "city-of-toronto" into "City Of Toronto".
func titleWords(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}
