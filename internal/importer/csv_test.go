package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEnterprises(t *testing.T, path string) ([]enterpriseRow, passCounts) {
	t.Helper()
	var rows []enterpriseRow
	counts, err := streamRows(path, func(row *enterpriseRow) error {
		rows = append(rows, *row)
		return nil
	})
	require.NoError(t, err)
	return rows, counts
}

func TestStreamRows_SkipsMalformedRows(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "enterprise.csv",
		"EnterpriseNumber,Status,JuridicalSituation,TypeOfEnterprise,JuridicalForm,StartDate\n"+
			"0400000086,AC,000,2,014,01-01-2000\n"+
			"0400000185,AC,000\n"+ // truncated record
			"0400000284,AC,000,2,014,01-01-2000\n")

	rows, counts := collectEnterprises(t, path)

	assert.Equal(t, int64(2), counts.Read)
	assert.Equal(t, int64(1), counts.Malformed)
	require.Len(t, rows, 2)
	assert.Equal(t, "0400000086", rows[0].EnterpriseNumber)
}

func TestStreamRows_DecodesByteOrderMark(t *testing.T) {
	content := "\xEF\xBB\xBF" + // UTF-8 BOM, as shipped by older extracts
		"EnterpriseNumber,Status,JuridicalSituation,TypeOfEnterprise,JuridicalForm,StartDate\n" +
		"0400000086,AC,000,2,014,01-01-2000\n"
	path := filepath.Join(t.TempDir(), "enterprise.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, counts := collectEnterprises(t, path)

	assert.Equal(t, int64(1), counts.Read)
	require.Len(t, rows, 1)
	assert.Equal(t, "0400000086", rows[0].EnterpriseNumber, "BOM must not bleed into the first header column")
}
