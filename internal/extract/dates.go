package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// months maps lowercased month names in the portal's three languages
// (plus English, which some filings use) to their number.
var months = map[string]int{
	"januari": 1, "februari": 2, "maart": 3, "april": 4, "mei": 5,
	"juni": 6, "juli": 7, "augustus": 8, "september": 9, "oktober": 10,
	"november": 11, "december": 12,

	"janvier": 1, "février": 2, "fevrier": 2, "mars": 3, "avril": 4,
	"mai": 5, "juin": 6, "juillet": 7, "août": 8, "aout": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12, "decembre": 12,

	"januar": 1, "februar": 2, "märz": 3, "marz": 3, "dezember": 12,

	"january": 1, "february": 2, "march": 3, "may": 5, "june": 6,
	"july": 7, "august": 8, "october": 10,
}

var (
	wordDateRe    = regexp.MustCompile(`(?i)^(\d{1,2})\.?\s+([\p{L}éûä]+)\s+(\d{4})$`)
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4})$`)
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NormalizeDate converts the date spellings seen on the portals to ISO
// 8601. Handles localized month names ("12 maart 2020", "1er janvier
// 2020", "3. März 2020") and slashed or dashed numeric dates. Returns
// empty on anything unrecognized.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if isoDateRe.MatchString(s) {
		return s
	}

	// French ordinal first-of-month.
	s = strings.Replace(s, "1er ", "1 ", 1)

	if m := wordDateRe.FindStringSubmatch(s); m != nil {
		month, ok := months[strings.ToLower(m[2])]
		if !ok {
			return ""
		}
		return isoDate(m[3], month, m[1])
	}

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return ""
		}
		return isoDate(m[3], month, m[1])
	}

	return ""
}

// MonthName resolves a localized month name to its number, 0 on miss.
func MonthName(s string) int {
	return months[strings.ToLower(strings.TrimSpace(s))]
}

func isoDate(year string, month int, day string) string {
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return ""
	}
	return fmt.Sprintf("%s-%02d-%02d", year, month, d)
}
