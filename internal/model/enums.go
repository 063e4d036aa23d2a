package model

// Status is the enterprise lifecycle state from the identity source.
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
)

// StatusFromCode maps the extract's status code ("AC" = active) to the
// stored enum. Anything else counts as stopped.
func StatusFromCode(code string) Status {
	if code == "AC" {
		return StatusActive
	}
	return StatusStopped
}

// JuridicalSituation is the closed legal-status enum. Source codes that
// have no mapping resolve to SituationOther, never to an error.
type JuridicalSituation string

const (
	SituationNormal              JuridicalSituation = "normal"
	SituationBankruptcy          JuridicalSituation = "bankruptcy"
	SituationLiquidation         JuridicalSituation = "liquidation"
	SituationJudicialDissolution JuridicalSituation = "judicial_dissolution"
	SituationMergerClosure       JuridicalSituation = "merger_closure"
	SituationCessation           JuridicalSituation = "cessation"
	SituationOther               JuridicalSituation = "other"
)

// juridicalSituations maps KBO situation codes to the enum. The table is
// fixed; unmapped codes fall back to SituationOther.
var juridicalSituations = map[string]JuridicalSituation{
	"000": SituationNormal,
	"010": SituationBankruptcy,
	"011": SituationBankruptcy, // bankruptcy closed
	"012": SituationBankruptcy, // bankruptcy with excusability
	"020": SituationLiquidation,
	"021": SituationLiquidation, // liquidation closed
	"030": SituationJudicialDissolution,
	"040": SituationMergerClosure,
	"041": SituationMergerClosure, // closure after split
	"050": SituationCessation,
}

// SituationFromCode maps a source juridical-situation code to the enum.
func SituationFromCode(code string) JuridicalSituation {
	if s, ok := juridicalSituations[code]; ok {
		return s
	}
	return SituationOther
}

// legalForms maps KBO juridical-form codes to display abbreviations.
var legalForms = map[string]string{
	"014": "NV",
	"015": "CV",
	"016": "CVOA",
	"017": "ESV",
	"610": "BV",
	"011": "VOF",
	"012": "CommV",
	"013": "CommVA",
	"021": "SE",
	"706": "VZW",
	"117": "IVZW",
	"026": "Stichting",
	"030": "Buitenlandse ond.",
	"060": "OFP",
}

// LegalFormFromCode maps a juridical-form code to its abbreviation.
// Unknown codes pass through unchanged so nothing is silently lost.
func LegalFormFromCode(code string) string {
	if f, ok := legalForms[code]; ok {
		return f
	}
	return code
}
