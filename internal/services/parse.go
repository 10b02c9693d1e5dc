package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// missingMarkers are the cell values treated as "no value"
var missingMarkers = map[string]bool{
	"":      true,
	"NA":    true,
	"NaN":   true,
	"nan":   true,
	"<nil>": true,
	"None":  true,
}

var reservationSuffix = regexp.MustCompile(`(?i)\s*\((sc|st)\)\s*$`)

func isMissing(s string) bool {
	return missingMarkers[strings.TrimSpace(s)]
}

// parseNumber removes every occurrence of strip and parses what is left.
// It reports false for missing or non-numeric input.
func parseNumber(s string, strip string) (float64, bool) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, false
	}
	if strip != "" {
		s = strings.ReplaceAll(s, strip, "")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parsePercent parses values such as "65.4%" or "65.4"
func parsePercent(s string) (float64, bool) {
	return parseNumber(s, "%")
}

// parseCount parses values such as "1,234,567"
func parseCount(s string) (float64, bool) {
	return parseNumber(s, ",")
}

// parseYear parses an election year; fractional years are rejected
func parseYear(s string) (int, bool) {
	f, ok := parseNumber(s, "")
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// titleCase trims and title-cases a value, lower-casing the rest of each word
func titleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// NormalizeName produces the display form of a constituency or state name
func NormalizeName(s string) string {
	if isMissing(s) {
		return ""
	}
	return titleCase(strings.Join(strings.Fields(s), " "))
}

// JoinKey produces the key used to match result rows with boundary features.
// Case, punctuation, spacing and a trailing (SC)/(ST) reservation marker are ignored.
func JoinKey(s string) string {
	if isMissing(s) {
		return ""
	}
	s = reservationSuffix.ReplaceAllString(strings.TrimSpace(s), "")
	folded := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(folded), " ")
}

// cleanParty applies the party cleaning rules: trim, title-case, alias lookup
func cleanParty(raw string, aliases map[string]string) string {
	party := titleCase(raw)
	if isMissing(raw) {
		party = UnknownParty
	}
	if alias, ok := aliases[party]; ok {
		return alias
	}
	return party
}
