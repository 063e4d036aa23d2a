// Package model defines the consolidated company record and its enums.
package model

import "time"

// Enrichment sources with independent last-enriched timestamps.
const (
	SourceFinancials     = "financials"      // National Bank filing portal
	SourceRegistryDetail = "registry_detail" // public KBO/CBE detail pages
)

// Company is the consolidated record for one enterprise, keyed by the
// normalized 10-digit enterprise number.
type Company struct {
	EnterpriseNr string `json:"enterprise_nr" db:"enterprise_nr"`
	Name         string `json:"name" db:"name"`
	Slug         string `json:"slug" db:"slug"`

	Names     NameSet            `json:"names" db:"names"`
	LegalForm string             `json:"legal_form,omitempty" db:"legal_form"`
	Status    Status             `json:"status" db:"status"`
	Situation JuridicalSituation `json:"situation" db:"situation"`
	StartDate string             `json:"start_date,omitempty" db:"start_date"` // ISO 8601

	Address *Address `json:"address,omitempty" db:"address"`
	Contact Contact  `json:"contact" db:"contact"`

	NaceCodes   []string `json:"nace_codes,omitempty" db:"nace_codes"`
	MainNace    string   `json:"main_nace,omitempty" db:"main_nace"`
	BranchCount int      `json:"branch_count" db:"branch_count"`

	Financials *FinancialSnapshot `json:"financials,omitempty" db:"financials"`

	// Registry-detail extras, all best-effort.
	ShareCapital       string          `json:"share_capital,omitempty" db:"share_capital"`
	FiscalYearEnd      string          `json:"fiscal_year_end,omitempty" db:"fiscal_year_end"` // "MM-DD"
	AnnualMeetingMonth string          `json:"annual_meeting_month,omitempty" db:"annual_meeting_month"`
	SituationDate      string          `json:"situation_date,omitempty" db:"situation_date"`
	Officers           []Officer       `json:"officers,omitempty" db:"officers"`
	RelatedEntities    []RelatedEntity `json:"related_entities,omitempty" db:"related_entities"`
	Qualifications     []Qualification `json:"qualifications,omitempty" db:"qualifications"`
	HistoricalNace     []NaceSet       `json:"historical_nace,omitempty" db:"historical_nace"`
	ExceptionalPeriods []DateRange     `json:"exceptional_periods,omitempty" db:"exceptional_periods"`

	FinancialsEnrichedAt *time.Time `json:"financials_enriched_at,omitempty" db:"financials_enriched_at"`
	RegistryEnrichedAt   *time.Time `json:"registry_enriched_at,omitempty" db:"registry_enriched_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NameSet holds the multilingual denominations of an enterprise.
type NameSet struct {
	OfficialFR   string `json:"official_fr,omitempty"`
	OfficialNL   string `json:"official_nl,omitempty"`
	OfficialDE   string `json:"official_de,omitempty"`
	OfficialEN   string `json:"official_en,omitempty"`
	Commercial   string `json:"commercial,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// DisplayName picks the headline name: official names in FR, NL, DE, EN
// order, then the commercial name, then the abbreviation. Empty if the
// enterprise has no name at all.
func (n NameSet) DisplayName() string {
	for _, s := range []string{n.OfficialFR, n.OfficialNL, n.OfficialDE, n.OfficialEN, n.Commercial, n.Abbreviation} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Address is the registered-office address in both national languages.
type Address struct {
	StreetNL string `json:"street_nl,omitempty"`
	StreetFR string `json:"street_fr,omitempty"`
	Number   string `json:"number,omitempty"`
	Box      string `json:"box,omitempty"`
	ZipCode  string `json:"zip_code,omitempty"`
	CityNL   string `json:"city_nl,omitempty"`
	CityFR   string `json:"city_fr,omitempty"`
}

// Valid reports whether the address carries at least one street and one
// city field, the minimum to be worth storing.
func (a *Address) Valid() bool {
	if a == nil {
		return false
	}
	return (a.StreetNL != "" || a.StreetFR != "") && (a.CityNL != "" || a.CityFR != "")
}

// Contact holds enterprise-level contact points.
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Fax     string `json:"fax,omitempty"`
}

// FinancialSnapshot is the latest filed annual-account summary.
// A snapshot always carries the filing year.
type FinancialSnapshot struct {
	Year         int      `json:"year"`
	Turnover     *float64 `json:"turnover,omitempty"`
	ProfitLoss   *float64 `json:"profit_loss,omitempty"`
	Equity       *float64 `json:"equity,omitempty"`
	Employees    *float64 `json:"employees,omitempty"`
	NetMarginPct *float64 `json:"net_margin_pct,omitempty"`
}

// Officer is a director or officer entry from the registry detail page.
type Officer struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Since string `json:"since,omitempty"` // ISO 8601
}

// RelatedEntity links this enterprise to another one mentioned on its
// detail page (absorptions, splits, conversions).
type RelatedEntity struct {
	EnterpriseNr string `json:"enterprise_nr"`
	Since        string `json:"since,omitempty"`
}

// Qualification is a registry capacity flag (employer, VAT-subject,
// registration with an administration) with its start date.
type Qualification struct {
	Name  string `json:"name"`
	Since string `json:"since,omitempty"`
}

// NaceSet groups activity codes by NACE version, used for the historical
// code sets shown on the detail page.
type NaceSet struct {
	Version string   `json:"version"`
	Codes   []string `json:"codes"`
}

// DateRange is an exceptional fiscal period.
type DateRange struct {
	From string `json:"from"` // ISO 8601
	To   string `json:"to"`
}
