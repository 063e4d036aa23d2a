package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendata-be/kbo-cli/internal/model"
)

const detailPageNL = `Algemene informatie
Ondernemingsnummer: 0417.497.106
Rechtstoestand: Normale toestand Sinds 9 mei 1935

Financiële gegevens
Kapitaal 61.500,00 EUR
Jaarvergadering mei
Einddatum boekjaar : 31 december
Uitzonderlijk boekjaar van 01/07/2019 tot 31/12/2020

Functies
Bestuurder Janssens, Piet Sinds 1 maart 2010
Gedelegeerd bestuurder Peeters, An Sinds 15 juni 2015

Hoedanigheden
Werkgever RSZ Sinds 1 juli 1972
Btw-plichtige Sinds 1 januari 1971

Linken tussen entiteiten
Opslorping van 0400.000.086 Sinds 30 juni 2001

Nacebel-code versie 2003: 45.310 Groothandel
Nacebel-code versie 2003: 51.531 Groothandel in hout
`

func TestRegistryDetails(t *testing.T) {
	det := RegistryDetails(detailPageNL)
	require.NotNil(t, det)

	assert.Equal(t, "61.500,00 EUR", det.ShareCapital)
	assert.Equal(t, "05", det.AnnualMeetingMonth)
	assert.Equal(t, "12-31", det.FiscalYearEnd)
	assert.Equal(t, "1935-05-09", det.SituationDate)

	require.Len(t, det.Officers, 2)
	assert.Equal(t, model.Officer{Name: "Janssens, Piet", Role: "Bestuurder", Since: "2010-03-01"}, det.Officers[0])
	assert.Equal(t, model.Officer{Name: "Peeters, An", Role: "Gedelegeerd bestuurder", Since: "2015-06-15"}, det.Officers[1])

	require.Len(t, det.Qualifications, 2)
	assert.Equal(t, "Werkgever RSZ", det.Qualifications[0].Name)
	assert.Equal(t, "1972-07-01", det.Qualifications[0].Since)
	assert.Equal(t, "1971-01-01", det.Qualifications[1].Since)

	require.Len(t, det.RelatedEntities, 1)
	assert.Equal(t, "0400000086", det.RelatedEntities[0].EnterpriseNr)
	assert.Equal(t, "2001-06-30", det.RelatedEntities[0].Since)

	require.Len(t, det.HistoricalNace, 1)
	assert.Equal(t, "2003", det.HistoricalNace[0].Version)
	assert.ElementsMatch(t, []string{"45310", "51531"}, det.HistoricalNace[0].Codes)

	require.Len(t, det.ExceptionalPeriods, 1)
	assert.Equal(t, model.DateRange{From: "2019-07-01", To: "2020-12-31"}, det.ExceptionalPeriods[0])
}

func TestRegistryDetails_French(t *testing.T) {
	det := RegistryDetails(`Situation juridique: Situation normale Depuis 1er janvier 2000
Capital 25.000,00 EUR
Assemblée générale juin
Administrateur Dupont, Marie Depuis 12 mars 2018
Employeur ONSS Depuis 1 avril 1990
`)
	require.NotNil(t, det)

	assert.Equal(t, "2000-01-01", det.SituationDate)
	assert.Equal(t, "25.000,00 EUR", det.ShareCapital)
	assert.Equal(t, "06", det.AnnualMeetingMonth)

	require.Len(t, det.Officers, 1)
	assert.Equal(t, "Dupont, Marie", det.Officers[0].Name)
	assert.Equal(t, "2018-03-12", det.Officers[0].Since)

	require.Len(t, det.Qualifications, 1)
	assert.Equal(t, "Employeur ONSS", det.Qualifications[0].Name)
}

func TestRegistryDetails_EmptyPage(t *testing.T) {
	assert.Nil(t, RegistryDetails(""))
	assert.Nil(t, RegistryDetails("Zoekresultaten\nGeen secties op deze pagina\n"))
}

func TestRegistryDetails_BareNumberIsNotARelation(t *testing.T) {
	// The page header shows the entity's own number without a date; it
	// must not be reported as a related entity.
	det := RegistryDetails("0417.497.106\nKapitaal 10.000,00 EUR\n")
	require.NotNil(t, det)
	assert.Empty(t, det.RelatedEntities)
}

func TestRegistryDetails_InvalidChecksumRelationDropped(t *testing.T) {
	det := RegistryDetails("Opslorping van 0400.000.087 Sinds 30 juni 2001\nKapitaal 1,00 EUR\n")
	require.NotNil(t, det)
	assert.Empty(t, det.RelatedEntities)
}
