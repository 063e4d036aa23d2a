package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendata-be/kbo-cli/internal/model"
	"github.com/opendata-be/kbo-cli/internal/store"
)

// Valid enterprise numbers for fixtures (mod-97 checksums verified by the
// entnum round-trip tests).
const (
	nrAlpha = "0400000086"
	nrBeta  = "0400000185"
	nrGamma = "0400000284"
	nrBadCk = "0400000087"
)

// memStore is an in-memory Store capturing every write the importer makes.
type memStore struct {
	mu          sync.Mutex
	upserts     [][]model.Company
	activity    [][]store.ActivityUpdate
	failUpserts bool
}

func (m *memStore) UpsertCompanies(_ context.Context, companies []model.Company) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpserts {
		return 0, assert.AnError
	}
	cp := make([]model.Company, len(companies))
	copy(cp, companies)
	m.upserts = append(m.upserts, cp)
	return int64(len(companies)), nil
}

func (m *memStore) ApplyActivityUpdates(_ context.Context, updates []store.ActivityUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]store.ActivityUpdate, len(updates))
	copy(cp, updates)
	m.activity = append(m.activity, cp)
	return nil
}

func (m *memStore) SelectStaleEnrichment(context.Context, string, time.Duration, int) ([]string, error) {
	return nil, nil
}
func (m *memStore) MergeFinancials(context.Context, string, *model.FinancialSnapshot, time.Time) error {
	return nil
}
func (m *memStore) MergeRegistryDetails(context.Context, string, *model.RegistryDetails, time.Time) error {
	return nil
}
func (m *memStore) TouchEnrichment(context.Context, string, string, time.Time) error { return nil }
func (m *memStore) Migrate(context.Context) error                                    { return nil }
func (m *memStore) Close() error                                                     { return nil }

// companies flattens all upsert chunks into a map keyed by enterprise number.
func (m *memStore) companies() map[string]model.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.Company)
	for _, chunk := range m.upserts {
		for _, c := range chunk {
			out[c.EnterpriseNr] = c
		}
	}
	return out
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixtureSources(t *testing.T) Sources {
	dir := t.TempDir()
	return Sources{
		Enterprises: writeCSV(t, dir, "enterprise.csv",
			"EnterpriseNumber,Status,JuridicalSituation,TypeOfEnterprise,JuridicalForm,StartDate\n"+
				nrAlpha+",AC,000,2,014,09-05-1935\n"+
				nrBeta+",AC,000,2,610,01-01-2001\n"+
				nrGamma+",AC,010,1,,15-03-1999\n"+ // natural person, dropped
				nrBadCk+",AC,000,2,014,01-01-2010\n"+ // bad checksum
				"0500000059,AC,050,2,706,20-06-1980\n"),
		Denominations: writeCSV(t, dir, "denomination.csv",
			"EntityNumber,Language,TypeOfDenomination,Denomination\n"+
				"0400.000.086,2,001,Eerste Naam NV\n"+
				"0400.000.086,2,001,Tweede Naam NV\n"+ // duplicate, first wins
				"0400.000.086,1,003,Alpha Commercial\n"+
				"0400.000.185,0,002,BT\n"+
				"0400.000.185,1,003,Beta Trading\n"),
		Addresses: writeCSV(t, dir, "address.csv",
			"EntityNumber,TypeOfAddress,Zipcode,MunicipalityNL,MunicipalityFR,StreetNL,StreetFR,HouseNumber,Box\n"+
				"0400.000.086,ABBR,1000,Brussel,Bruxelles,Wetstraat,Rue de la Loi,16,\n"+ // wrong type
				"0400.000.086,REGO,1000,Brussel,Bruxelles,Wetstraat,Rue de la Loi,16,b2\n"+
				"0400.000.185,REGO,9000,,,Veldstraat,,,\n"), // no city, invalid
		Contacts: writeCSV(t, dir, "contact.csv",
			"EntityNumber,EntityContact,ContactType,Value\n"+
				"0400.000.086,ENT,EMAIL,Info@Alpha.BE\n"+
				"0400.000.086,ENT,WEB,alpha.be\n"+
				"0400.000.086,EST,TEL,+32 2 000 00 00\n"+ // establishment level, dropped
				"0400.000.185,ENT,TEL,+32 9 111 11 11\n"),
		Branches: writeCSV(t, dir, "branch.csv",
			"Id,StartDate,EnterpriseNumber\n"+
				"9.000.000.001,01-01-2010,0400.000.086\n"+
				"9.000.000.002,01-01-2012,0400.000.086\n"+
				"9.000.000.003,01-01-2015,0400.000.185\n"),
		Activities: writeCSV(t, dir, "activity.csv",
			"EntityNumber,ActivityGroup,NaceVersion,NaceCode,Classification\n"+
				"0400.000.086,001,2008,62010,SECO\n"+ // secondary first
				"0400.000.086,001,2008,62020,MAIN\n"+ // main arrives second
				"0400.000.086,001,2008,62010,SECO\n"+ // duplicate code
				"0400.000.086,001,2003,45310,MAIN\n"+ // stale version, dropped
				"0400.000.185,001,2025,47910,MAIN\n"),
	}
}

func TestImporter_Run(t *testing.T) {
	st := &memStore{}
	im := New(st, Options{}, nil)

	sum, err := im.Run(context.Background(), fixtureSources(t))
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, int64(1), sum.InvalidKeys)
	assert.Equal(t, int64(5), sum.RowsRead["identity"])
	assert.Equal(t, int64(0), sum.FailedBatches)

	got := st.companies()
	require.Len(t, got, 2) // alpha and beta; the nameless VZW is skipped

	alpha := got[nrAlpha]
	assert.Equal(t, "Eerste Naam NV", alpha.Name) // first official wins over later duplicate
	assert.Equal(t, "eerste-naam-nv", alpha.Slug)
	assert.Equal(t, "Alpha Commercial", alpha.Names.Commercial)
	assert.Equal(t, "NV", alpha.LegalForm)
	assert.Equal(t, model.StatusActive, alpha.Status)
	assert.Equal(t, "1935-05-09", alpha.StartDate)
	require.NotNil(t, alpha.Address)
	assert.Equal(t, "Wetstraat", alpha.Address.StreetNL)
	assert.Equal(t, "b2", alpha.Address.Box)
	assert.Equal(t, "info@alpha.be", alpha.Contact.Email)
	assert.Equal(t, "https://alpha.be", alpha.Contact.Website)
	assert.Empty(t, alpha.Contact.Phone) // establishment-level row dropped
	assert.Equal(t, 2, alpha.BranchCount)

	beta := got[nrBeta]
	assert.Equal(t, "Beta Trading", beta.Name) // commercial fallback when no official name
	assert.Nil(t, beta.Address)                // city-less address rejected
	assert.Equal(t, "+32 9 111 11 11", beta.Contact.Phone)
	assert.Equal(t, 1, beta.BranchCount)

	_, hasGamma := got[nrGamma]
	assert.False(t, hasGamma, "natural persons are filtered out")
}

func TestImporter_Run_SkipsNamelessRecords(t *testing.T) {
	st := &memStore{}
	im := New(st, Options{}, nil)

	sum, err := im.Run(context.Background(), fixtureSources(t))
	require.NoError(t, err)

	// 0500000059 has no denomination row at all.
	assert.Equal(t, int64(1), sum.SkippedNameless)
	_, ok := st.companies()["0500000059"]
	assert.False(t, ok)
}

func TestImporter_ActivityPass(t *testing.T) {
	st := &memStore{}
	im := New(st, Options{}, nil)

	sum, err := im.Run(context.Background(), fixtureSources(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.ActivityUpdates)

	byNr := make(map[string]store.ActivityUpdate)
	for _, batch := range st.activity {
		for _, u := range batch {
			byNr[u.EnterpriseNr] = u
		}
	}

	alpha := byNr[nrAlpha]
	assert.ElementsMatch(t, []string{"62010", "62020"}, alpha.Codes) // deduped, stale version dropped
	assert.Equal(t, "62020", alpha.Main, "main classification wins regardless of row order")

	beta := byNr[nrBeta]
	assert.Equal(t, []string{"47910"}, beta.Codes)
	assert.Equal(t, "47910", beta.Main)
}

func TestImporter_ActivityPass_BoundedBatching(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		Enterprises: writeCSV(t, dir, "enterprise.csv",
			"EnterpriseNumber,Status,JuridicalSituation,TypeOfEnterprise,JuridicalForm,StartDate\n"+
				nrAlpha+",AC,000,2,014,01-01-2000\n"+
				nrBeta+",AC,000,2,014,01-01-2000\n"),
		Denominations: writeCSV(t, dir, "denomination.csv",
			"EntityNumber,Language,TypeOfDenomination,Denomination\n"+
				nrAlpha+",2,001,Alpha\n"+
				nrBeta+",2,001,Beta\n"),
		Activities: writeCSV(t, dir, "activity.csv",
			"EntityNumber,ActivityGroup,NaceVersion,NaceCode,Classification\n"+
				nrAlpha+",001,2008,62010,SECO\n"+
				nrBeta+",001,2008,43210,MAIN\n"+ // second key forces a flush at limit 1
				nrAlpha+",001,2008,62020,MAIN\n"), // alpha reappears in the next batch
	}

	st := &memStore{}
	im := New(st, Options{ActivityKeyLimit: 1}, nil)

	sum, err := im.Run(context.Background(), src)
	require.NoError(t, err)

	// Three batches: alpha, beta, alpha again. The store-side union and
	// fill-main-if-unset semantics make the split invisible.
	require.Len(t, st.activity, 3)
	assert.Equal(t, int64(3), sum.ActivityUpdates)

	var alphaMains []string
	for _, batch := range st.activity {
		for _, u := range batch {
			if u.EnterpriseNr == nrAlpha {
				alphaMains = append(alphaMains, u.Main)
			}
		}
	}
	assert.Equal(t, []string{"", "62020"}, alphaMains)
}

func TestImporter_DryRun(t *testing.T) {
	st := &memStore{}
	im := New(st, Options{DryRun: true}, nil)

	sum, err := im.Run(context.Background(), fixtureSources(t))
	require.NoError(t, err)

	assert.True(t, sum.DryRun)
	assert.Equal(t, int64(2), sum.Upserted)
	assert.Empty(t, st.upserts, "dry run must not write")
	assert.Empty(t, st.activity)
}

func TestImporter_ActiveOnly(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		Enterprises: writeCSV(t, dir, "enterprise.csv",
			"EnterpriseNumber,Status,JuridicalSituation,TypeOfEnterprise,JuridicalForm,StartDate\n"+
				nrAlpha+",AC,000,2,014,01-01-2000\n"+
				nrBeta+",ST,050,2,014,01-01-2000\n"),
		Denominations: writeCSV(t, dir, "denomination.csv",
			"EntityNumber,Language,TypeOfDenomination,Denomination\n"+
				nrAlpha+",2,001,Alpha\n"+
				nrBeta+",2,001,Beta\n"),
	}

	st := &memStore{}
	im := New(st, Options{ActiveOnly: true}, nil)

	sum, err := im.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.SkippedInactive)

	got := st.companies()
	assert.Len(t, got, 1)
	_, ok := got[nrBeta]
	assert.False(t, ok)
}

func TestImporter_FailedChunksDoNotAbort(t *testing.T) {
	st := &memStore{failUpserts: true}
	im := New(st, Options{BatchSize: 1}, nil)

	sum, err := im.Run(context.Background(), fixtureSources(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.FailedBatches)
	assert.Equal(t, int64(0), sum.Upserted)
}

func TestImporter_ChunkedUpserts(t *testing.T) {
	st := &memStore{}
	im := New(st, Options{BatchSize: 1}, nil)

	_, err := im.Run(context.Background(), fixtureSources(t))
	require.NoError(t, err)

	// Two finalized records with a chunk size of one.
	require.Len(t, st.upserts, 2)
	assert.Len(t, st.upserts[0], 1)
	assert.Len(t, st.upserts[1], 1)
}

func TestParseExtractDate(t *testing.T) {
	assert.Equal(t, "1935-05-09", parseExtractDate("09-05-1935"))
	assert.Equal(t, "", parseExtractDate(""))
	assert.Equal(t, "", parseExtractDate("1935-05-09")) // already ISO, not extract format
	assert.Equal(t, "", parseExtractDate("31-02-2020"))
}

func TestImporter_RequiresEnterprisesFile(t *testing.T) {
	im := New(&memStore{}, Options{}, nil)
	_, err := im.Run(context.Background(), Sources{})
	assert.Error(t, err)
}
