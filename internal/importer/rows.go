package importer

// Row shapes of the six extract CSVs, decoded by header name so column
// reordering between extract versions does not break the import.

// enterpriseRow is one row of enterprise.csv, the identity source.
type enterpriseRow struct {
	EnterpriseNumber   string `csv:"EnterpriseNumber"`
	Status             string `csv:"Status"`
	JuridicalSituation string `csv:"JuridicalSituation"`
	TypeOfEnterprise   string `csv:"TypeOfEnterprise"`
	JuridicalForm      string `csv:"JuridicalForm"`
	StartDate          string `csv:"StartDate"` // dd-mm-yyyy
}

// denominationRow is one row of denomination.csv, the name source.
type denominationRow struct {
	EntityNumber       string `csv:"EntityNumber"`
	Language           string `csv:"Language"`
	TypeOfDenomination string `csv:"TypeOfDenomination"`
	Denomination       string `csv:"Denomination"`
}

// addressRow is one row of address.csv.
type addressRow struct {
	EntityNumber   string `csv:"EntityNumber"`
	TypeOfAddress  string `csv:"TypeOfAddress"`
	Zipcode        string `csv:"Zipcode"`
	MunicipalityNL string `csv:"MunicipalityNL"`
	MunicipalityFR string `csv:"MunicipalityFR"`
	StreetNL       string `csv:"StreetNL"`
	StreetFR       string `csv:"StreetFR"`
	HouseNumber    string `csv:"HouseNumber"`
	Box            string `csv:"Box"`
}

// contactRow is one row of contact.csv.
type contactRow struct {
	EntityNumber  string `csv:"EntityNumber"`
	EntityContact string `csv:"EntityContact"` // ENT = enterprise, EST = establishment
	ContactType   string `csv:"ContactType"`
	Value         string `csv:"Value"`
}

// branchRow is one row of branch.csv.
type branchRow struct {
	ID               string `csv:"Id"`
	StartDate        string `csv:"StartDate"`
	EnterpriseNumber string `csv:"EnterpriseNumber"`
}

// activityRow is one row of activity.csv, by far the largest source.
type activityRow struct {
	EntityNumber   string `csv:"EntityNumber"`
	ActivityGroup  string `csv:"ActivityGroup"`
	NaceVersion    string `csv:"NaceVersion"`
	NaceCode       string `csv:"NaceCode"`
	Classification string `csv:"Classification"` // MAIN, SECO, ANCI
}

// Source codes used by the passes.
const (
	typeLegalEntity      = "2"    // TypeOfEnterprise: legal person
	addressTypeSeat      = "REGO" // registered office
	contactLevelEnt      = "ENT"
	classificationMain   = "MAIN"
	denominationOfficial = "001"
	denominationAbbrev   = "002"
	denominationComm     = "003"
)

// acceptedNaceVersions are the code-generation versions retained by the
// activity pass; older generations only appear in the historical sets on
// the registry detail pages.
var acceptedNaceVersions = map[string]bool{
	"2008": true,
	"2025": true,
}
