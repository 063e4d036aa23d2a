package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExportLink(t *testing.T) {
	html := `<a href="/files/accounts.xlsx">XLSX</a> <a href="/files/accounts.csv?y=2023">CSV</a>`

	link, ok := FindExportLink(html, "https://consult.example.be/enterprise/0417.497.106")
	require.True(t, ok)
	assert.Equal(t, "https://consult.example.be/files/accounts.csv?y=2023", link, "CSV preferred over XLSX")
}

func TestFindExportLink_XLSXOnly(t *testing.T) {
	link, ok := FindExportLink(`<a href="export.xlsx">dl</a>`, "https://x.be/a/b")
	require.True(t, ok)
	assert.Equal(t, "https://x.be/a/export.xlsx", link)
	assert.True(t, IsXLSXLink(link))
}

func TestFindExportLink_None(t *testing.T) {
	_, ok := FindExportLink(`<a href="/help.html">help</a>`, "https://x.be")
	assert.False(t, ok)
}

func TestFilingYear(t *testing.T) {
	assert.Equal(t, 2023, FilingYear("Jaarrekening 2023 neergelegd", 2000))
	assert.Equal(t, 2022, FilingYear("Exercice comptable 2022", 2000))
	assert.Equal(t, 2000, FilingYear("geen jaartal hier", 2000))
}
