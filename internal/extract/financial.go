package extract

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/opendata-be/kbo-cli/internal/model"
)

// Rubrics maps filing line-item codes to their reported value.
type Rubrics map[string]float64

// Rubric code aliases per metric, tried in order. Filing schemas differ
// between full and abbreviated deposits, so each metric has fallbacks.
var (
	turnoverCodes   = []string{"70", "9900"}
	profitLossCodes = []string{"9904", "9903"}
	equityCodes     = []string{"10/15", "10"}
	employeeCodes   = []string{"9087", "9086", "9088"}
)

// resolve returns the first alias present in the rubrics, nil if none is.
func (r Rubrics) resolve(codes []string) *float64 {
	for _, code := range codes {
		if v, ok := r[code]; ok {
			return &v
		}
	}
	return nil
}

// Financials builds a snapshot for the filing year from parsed rubrics.
// Net margin is derived only when both turnover and profit are present
// and turnover is nonzero. Returns nil when no metric resolved at all.
func Financials(year int, r Rubrics) *model.FinancialSnapshot {
	snap := &model.FinancialSnapshot{
		Year:       year,
		Turnover:   r.resolve(turnoverCodes),
		ProfitLoss: r.resolve(profitLossCodes),
		Equity:     r.resolve(equityCodes),
		Employees:  r.resolve(employeeCodes),
	}
	if snap.Empty() {
		return nil
	}

	if snap.Turnover != nil && snap.ProfitLoss != nil && *snap.Turnover != 0 {
		margin := *snap.ProfitLoss / *snap.Turnover * 100
		snap.NetMarginPct = &margin
	}
	return snap
}

// ParseRubricsCSV reads a semicolon- or comma-delimited code;value export.
// Header rows and lines whose value does not parse as a number are skipped.
func ParseRubricsCSV(r io.Reader) (Rubrics, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "extract: read filing export")
	}

	delimiter := ';'
	if !strings.Contains(string(data), ";") {
		delimiter = ','
	}

	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	rubrics := make(Rubrics)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rubrics, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "extract: parse filing export")
		}
		if len(rec) < 2 {
			continue
		}

		code := strings.TrimSpace(rec[0])
		value, ok := parseAmount(rec[len(rec)-1])
		if code == "" || !ok {
			continue
		}
		rubrics[code] = value
	}
}

// ParseRubricsXLSX reads the spreadsheet variant of the filing export:
// first column rubric code, last column value, one rubric per row.
func ParseRubricsXLSX(data []byte) (Rubrics, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "extract: open filing workbook")
	}
	if len(file.Sheets) == 0 {
		return nil, eris.New("extract: filing workbook has no sheets")
	}

	rubrics := make(Rubrics)
	for _, row := range file.Sheets[0].Rows {
		if len(row.Cells) < 2 {
			continue
		}
		code := strings.TrimSpace(row.Cells[0].String())
		value, ok := parseAmount(row.Cells[len(row.Cells)-1].String())
		if code == "" || !ok {
			continue
		}
		rubrics[code] = value
	}
	return rubrics, nil
}

// parseAmount handles both Belgian formatting ("1.500.000,00") and plain
// decimal notation.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "EUR")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	s = strings.ReplaceAll(s, " ", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
