package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	exportLinkRe = regexp.MustCompile(`(?i)href="([^"]+\.(?:csv|xlsx)(?:\?[^"]*)?)"`)
	filingYearRe = regexp.MustCompile(`(?i)(?:boekjaar|jaarrekening|exercice|comptes annuels|geschäftsjahr|jahresabschluss)\D{0,30}((?:19|20)\d{2})`)
)

// FindExportLink locates the machine-readable filing export linked from
// the page, resolved against the page URL. Prefers CSV over XLSX when
// both are offered.
func FindExportLink(html, pageURL string) (string, bool) {
	matches := exportLinkRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return "", false
	}

	best := matches[0][1]
	for _, m := range matches {
		if strings.Contains(strings.ToLower(m[1]), ".csv") {
			best = m[1]
			break
		}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return best, true
	}
	ref, err := url.Parse(best)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// IsXLSXLink reports whether the export link points at a spreadsheet.
func IsXLSXLink(link string) bool {
	return strings.Contains(strings.ToLower(link), ".xlsx")
}

// FilingYear reads the filing year from the page text, falling back when
// no year is mentioned near a filing label.
func FilingYear(text string, fallback int) int {
	m := filingYearRe.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return year
}
