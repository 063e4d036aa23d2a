package enrich

import "strings"

// noDataPhrases are the portal messages, in all page languages, that mean
// the entity genuinely has nothing to show. Matching any of them is a
// terminal, success-like outcome, not an error.
var noDataPhrases = []string{
	// Filing portal
	"geen jaarrekeningen beschikbaar",
	"aucun compte annuel disponible",
	"keine jahresabschlüsse verfügbar",
	"no annual accounts available",

	// Registry detail pages
	"geen gegevens gevonden",
	"geen gegevens beschikbaar",
	"aucune donnée trouvée",
	"aucune donnée disponible",
	"keine daten gefunden",
	"no data found",
}

// IsNoData reports whether the page text carries a known no-data phrase.
func IsNoData(pageText string) bool {
	text := strings.ToLower(pageText)
	for _, phrase := range noDataPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
