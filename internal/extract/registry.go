package extract

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/opendata-be/kbo-cli/internal/entnum"
	"github.com/opendata-be/kbo-cli/internal/model"
)

// Label and keyword sets for the three page languages. The public detail
// page renders the same table layout in each language, so matching is a
// per-line scan for a known label followed by the value.
var (
	sinceMarkers = []string{"Sinds", "Depuis", "Seit"}

	capitalLabels = []string{"Kapitaal", "Capital", "Kapital"}
	meetingLabels = []string{"Jaarvergadering", "Assemblée générale", "Assemblee generale", "Jahresversammlung"}
	yearEndLabels = []string{"Einddatum boekjaar", "Date de fin de l'année comptable", "Enddatum des Geschäftsjahres"}
	situationLbls = []string{"Rechtstoestand", "Situation juridique", "Rechtslage"}
	exceptLabels  = []string{"Uitzonderlijk boekjaar", "Exercice exceptionnel", "Ausnahmegeschäftsjahr"}

	officerRoles = []string{
		"Gedelegeerd bestuurder", "Bestuurder", "Zaakvoerder", "Vereffenaar", "Voorzitter",
		"Administrateur délégué", "Administrateur", "Gérant", "Gerant", "Liquidateur", "Président",
		"Geschäftsführer", "Verwalter", "Liquidator",
	}

	qualificationKeys = []string{
		"Werkgever", "Btw-plichtige", "BTW-plichtige", "Inschrijving",
		"Employeur", "Assujetti à la TVA", "Immatriculation",
		"Arbeitgeber", "Mehrwertsteuerpflichtig",
	}

	entityKeyRe = regexp.MustCompile(`[01]\d{3}\.\d{3}\.\d{3}`)
	dateRe      = regexp.MustCompile(`\d{1,2}(?:er)?(?:[./-]\d{1,2}[./-]\d{4}|\.?\s+[\p{L}]+\s+\d{4})`)
	amountRe    = regexp.MustCompile(`[\d.,]+\s*EUR`)
	dayMonthRe  = regexp.MustCompile(`(\d{1,2})\s+([\p{L}éûä]+)\b`)
	naceVerRe   = regexp.MustCompile(`(?i)versie?\s+(\d{4})|version\s+(\d{4})`)
	naceCodeRe  = regexp.MustCompile(`\b(\d{2}\.\d{2,3})\b`)
)

// RegistryDetails scans the plaintext of a public detail page for the
// extended fields the bulk extract does not carry. Every field is
// best-effort; a page section that moved or changed label simply yields
// nothing for that field.
func RegistryDetails(text string) *model.RegistryDetails {
	det := &model.RegistryDetails{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case matchLabel(line, capitalLabels) && det.ShareCapital == "":
			if m := amountRe.FindString(line); m != "" {
				det.ShareCapital = strings.TrimSpace(m)
			}
		case matchLabel(line, yearEndLabels) && det.FiscalYearEnd == "":
			det.FiscalYearEnd = fiscalYearEnd(line)
		case matchLabel(line, meetingLabels) && det.AnnualMeetingMonth == "":
			det.AnnualMeetingMonth = meetingMonth(line)
		case matchLabel(line, situationLbls) && det.SituationDate == "":
			det.SituationDate = firstDate(line)
		case matchLabel(line, exceptLabels):
			if rng, ok := dateRange(line); ok {
				det.ExceptionalPeriods = append(det.ExceptionalPeriods, rng)
			}
		case naceVerRe.MatchString(line):
			if set, ok := naceSet(line); ok {
				det.HistoricalNace = mergeNaceSet(det.HistoricalNace, set)
			}
		default:
			if off, ok := officer(line); ok {
				det.Officers = append(det.Officers, off)
			} else if q, ok := qualification(line); ok {
				det.Qualifications = append(det.Qualifications, q)
			} else if rel, ok := relatedEntity(line); ok {
				det.RelatedEntities = append(det.RelatedEntities, rel)
			}
		}
	}

	if det.Empty() {
		return nil
	}
	return det
}

func matchLabel(line string, labels []string) bool {
	for _, l := range labels {
		if strings.HasPrefix(line, l) {
			return true
		}
	}
	return false
}

// firstDate normalizes the first date-looking run on the line.
func firstDate(line string) string {
	for _, m := range dateRe.FindAllString(line, -1) {
		if iso := NormalizeDate(m); iso != "" {
			return iso
		}
	}
	return ""
}

// fiscalYearEnd reads "31 december" style values into "MM-DD".
func fiscalYearEnd(line string) string {
	m := dayMonthRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	month := MonthName(m[2])
	if month == 0 {
		return ""
	}
	day := m[1]
	if len(day) == 1 {
		day = "0" + day
	}
	return padMonth(month) + "-" + day
}

// meetingMonth reads the annual-meeting month name from the line.
func meetingMonth(line string) string {
	for _, word := range strings.Fields(line) {
		if month := MonthName(strings.Trim(word, ".,;:")); month != 0 {
			return padMonth(month)
		}
	}
	return ""
}

// officer matches "Role Name Since date" lines from the functions table.
func officer(line string) (model.Officer, bool) {
	for _, role := range officerRoles {
		if !strings.HasPrefix(line, role) {
			continue
		}
		rest := strings.TrimSpace(line[len(role):])
		name, since := splitSince(rest)
		if name == "" {
			return model.Officer{}, false
		}
		return model.Officer{Name: name, Role: role, Since: since}, true
	}
	return model.Officer{}, false
}

// qualification matches capacity rows ("Werkgever RSZ Sinds ...").
func qualification(line string) (model.Qualification, bool) {
	for _, key := range qualificationKeys {
		if !strings.HasPrefix(line, key) {
			continue
		}
		name, since := splitSince(line)
		if name == "" {
			name = key
		}
		return model.Qualification{Name: name, Since: since}, true
	}
	return model.Qualification{}, false
}

// relatedEntity matches rows from the entity-links table that carry
// another checksum-valid enterprise number.
func relatedEntity(line string) (model.RelatedEntity, bool) {
	raw := entityKeyRe.FindString(line)
	if raw == "" {
		return model.RelatedEntity{}, false
	}
	nr, err := entnum.Validate(raw)
	if err != nil {
		return model.RelatedEntity{}, false
	}
	since := firstDate(line)
	if since == "" {
		// The links table always dates its relations; a bare number
		// elsewhere on the page is the entity itself or a footer link.
		return model.RelatedEntity{}, false
	}
	return model.RelatedEntity{EnterpriseNr: nr, Since: since}, true
}

// naceSet reads a historical activity line, e.g.
// "Nacebel-code versie 2003: 45.310 - Groothandel in ...".
func naceSet(line string) (model.NaceSet, bool) {
	vm := naceVerRe.FindStringSubmatch(line)
	if vm == nil {
		return model.NaceSet{}, false
	}
	version := vm[1]
	if version == "" {
		version = vm[2]
	}

	var codes []string
	for _, m := range naceCodeRe.FindAllString(line, -1) {
		codes = append(codes, strings.ReplaceAll(m, ".", ""))
	}
	if len(codes) == 0 {
		return model.NaceSet{}, false
	}
	return model.NaceSet{Version: version, Codes: codes}, true
}

// mergeNaceSet folds codes into an existing version entry, deduplicated.
func mergeNaceSet(sets []model.NaceSet, add model.NaceSet) []model.NaceSet {
	for i := range sets {
		if sets[i].Version != add.Version {
			continue
		}
		for _, c := range add.Codes {
			if !slices.Contains(sets[i].Codes, c) {
				sets[i].Codes = append(sets[i].Codes, c)
			}
		}
		return sets
	}
	return append(sets, add)
}

// dateRange reads "van <date> tot <date>" style exceptional periods.
func dateRange(line string) (model.DateRange, bool) {
	dates := dateRe.FindAllString(line, -1)
	if len(dates) < 2 {
		return model.DateRange{}, false
	}
	from, to := NormalizeDate(dates[0]), NormalizeDate(dates[1])
	if from == "" || to == "" {
		return model.DateRange{}, false
	}
	return model.DateRange{From: from, To: to}, true
}

// splitSince separates a value from its trailing "Sinds/Depuis/Seit date"
// suffix, returning the value and the normalized date.
func splitSince(s string) (value, since string) {
	for _, marker := range sinceMarkers {
		idx := strings.Index(s, " "+marker+" ")
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(s[:idx]), firstDate(s[idx:])
	}
	return strings.TrimSpace(s), ""
}

func padMonth(m int) string {
	return fmt.Sprintf("%02d", m)
}
