package model

// RegistryDetails is the partial record produced by registry-detail
// extraction. Every field is optional; only non-zero fields are merged
// into the stored company.
type RegistryDetails struct {
	ShareCapital       string          `json:"share_capital,omitempty"`
	FiscalYearEnd      string          `json:"fiscal_year_end,omitempty"`
	AnnualMeetingMonth string          `json:"annual_meeting_month,omitempty"`
	SituationDate      string          `json:"situation_date,omitempty"`
	Officers           []Officer       `json:"officers,omitempty"`
	RelatedEntities    []RelatedEntity `json:"related_entities,omitempty"`
	Qualifications     []Qualification `json:"qualifications,omitempty"`
	HistoricalNace     []NaceSet       `json:"historical_nace,omitempty"`
	ExceptionalPeriods []DateRange     `json:"exceptional_periods,omitempty"`
}

// Empty reports whether extraction found nothing usable.
func (d *RegistryDetails) Empty() bool {
	if d == nil {
		return true
	}
	return d.ShareCapital == "" &&
		d.FiscalYearEnd == "" &&
		d.AnnualMeetingMonth == "" &&
		d.SituationDate == "" &&
		len(d.Officers) == 0 &&
		len(d.RelatedEntities) == 0 &&
		len(d.Qualifications) == 0 &&
		len(d.HistoricalNace) == 0 &&
		len(d.ExceptionalPeriods) == 0
}

// Empty reports whether the snapshot carries no metric at all.
func (f *FinancialSnapshot) Empty() bool {
	if f == nil {
		return true
	}
	return f.Turnover == nil && f.ProfitLoss == nil && f.Equity == nil && f.Employees == nil
}
