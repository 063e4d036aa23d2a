package importer

import (
	"strings"

	"github.com/opendata-be/kbo-cli/internal/model"
)

// builder accumulates the fields of one enterprise across the passes.
// Every setter keeps the first value seen; duplicate rows in the extracts
// never overwrite an earlier one.
type builder struct {
	enterpriseNr string
	legalForm    string
	status       model.Status
	situation    model.JuridicalSituation
	startDate    string

	names   model.NameSet
	address *model.Address
	contact model.Contact

	branchCount int
}

func newBuilder(enterpriseNr string) *builder {
	return &builder{enterpriseNr: enterpriseNr}
}

// setName routes a denomination row into the right NameSet slot. Language
// codes follow the extract: 1 = FR, 2 = NL, 3 = DE, 4 = EN.
func (b *builder) setName(denomType, language, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	switch denomType {
	case denominationOfficial:
		switch language {
		case "1":
			setFirst(&b.names.OfficialFR, value)
		case "2":
			setFirst(&b.names.OfficialNL, value)
		case "3":
			setFirst(&b.names.OfficialDE, value)
		case "4":
			setFirst(&b.names.OfficialEN, value)
		}
	case denominationAbbrev:
		setFirst(&b.names.Abbreviation, value)
	case denominationComm:
		setFirst(&b.names.Commercial, value)
	}
}

// setAddress keeps the first registered-office address that carries at
// least one street and one city field.
func (b *builder) setAddress(addr *model.Address) {
	if b.address != nil || !addr.Valid() {
		return
	}
	b.address = addr
}

// setContact classifies an enterprise-level contact row. Emails are
// lowercased; websites without a scheme get https:// prefixed.
func (b *builder) setContact(contactType, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	switch contactType {
	case "TEL":
		setFirst(&b.contact.Phone, value)
	case "EMAIL":
		setFirst(&b.contact.Email, strings.ToLower(value))
	case "WEB":
		if !strings.Contains(value, "://") {
			value = "https://" + value
		}
		setFirst(&b.contact.Website, value)
	case "FAX":
		setFirst(&b.contact.Fax, value)
	}
}

// finalize turns the accumulated fields into a storable record. Returns
// false when the enterprise never received any name; such records are
// counted and skipped rather than stored nameless.
func (b *builder) finalize() (model.Company, bool) {
	name := b.names.DisplayName()
	if name == "" {
		return model.Company{}, false
	}

	return model.Company{
		EnterpriseNr: b.enterpriseNr,
		Name:         name,
		Slug:         model.Slugify(name),
		Names:        b.names,
		LegalForm:    b.legalForm,
		Status:       b.status,
		Situation:    b.situation,
		StartDate:    b.startDate,
		Address:      b.address,
		Contact:      b.contact,
		BranchCount:  b.branchCount,
	}, true
}

func setFirst(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
