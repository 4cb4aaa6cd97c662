package sourcing

import "github.com/shopspring/decimal"

// Platform-neutral record shapes. Every adapter deserializes its vendor
// payload into these; the reconciliation engine never sees vendor schemas.
//
// External identifiers are carried as strings because the platforms disagree
// on identifier types (SITEX and WEBRA use numeric ids, UNITEK uses opaque
// string keys). A record's external id is stable per platform but not
// comparable across platforms.

// CategoryRecord is a category node as reported by a source platform.
// ParentExternalID of "" or "0" marks a root node. The flat list is not
// ordered, so a child may appear before its parent.
type CategoryRecord struct {
	ExternalID       string
	ParentExternalID string
	Name             string
	SortOrder        int
	Visible          bool
}

// IsRoot returns true if the record carries no usable parent reference
func (r CategoryRecord) IsRoot() bool {
	return r.ParentExternalID == "" || r.ParentExternalID == "0"
}

// AddressBlock holds a contact/legal address block of a manufacturer
type AddressBlock struct {
	Company string
	Street  string
	City    string
	Zip     string
	Country string
	Email   string
	Phone   string
}

// ManufacturerRecord is a manufacturer as reported by a source platform
type ManufacturerRecord struct {
	ExternalID string
	Name       string
	// Info is the informational contact block, EURep the EU-representative
	// block; either may be absent in the feed.
	Info  *AddressBlock
	EURep *AddressBlock
}

// OptionRecord is one discrete value of a parameter
type OptionRecord struct {
	ExternalID string
	Name       string
	SortOrder  int
}

// ParameterRecord is a product attribute definition scoped to a category.
// The same external numeric id can repeat across categories, so the owning
// category id is part of the record identity.
type ParameterRecord struct {
	ExternalID         string
	CategoryExternalID string
	Name               string
	SortOrder          int
	Options            []OptionRecord
}

// ParameterValueRef is a product's reference to a (parameter, option) pair
// by external ids
type ParameterValueRef struct {
	ParameterExternalID string
	OptionExternalID    string
}

// ProductRecord is a product as reported by a source platform
type ProductRecord struct {
	ExternalID             string
	CategoryExternalID     string
	ManufacturerExternalID string
	Reference              string
	Name                   string
	Description            string

	ClientPrice       decimal.Decimal
	PartnerPrice      decimal.Decimal
	PromoClientPrice  decimal.Decimal
	PromoPartnerPrice decimal.Decimal

	Parameters       []ParameterValueRef
	ImageURL         string
	AdditionalImages []string

	Active bool
	Show   bool
	Status string
}

// DocumentRecord is a product document (datasheet, manual, certificate)
// as reported by a source platform
type DocumentRecord struct {
	ExternalID        string
	ProductExternalID string
	Name              string
	URL               string
	Type              string
}
