package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// Product represents a storefront product reconciled from a source platform.
// The external identifier is unique within a platform. A product belongs to
// one category and optionally one manufacturer; a missing manufacturer
// reference is persisted as null, never treated as a hard failure.
type Product struct {
	shared.BaseEntity
	Platform   sourcing.PlatformCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_product_platform_ext,priority:1"`
	ExternalID string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_platform_ext,priority:2"`
	Reference  string                `gorm:"type:varchar(128);index"`
	Name       string                `gorm:"type:varchar(512);not null"`
	Slug       string                `gorm:"type:varchar(255);not null;uniqueIndex"`

	Description string `gorm:"type:text"`

	CategoryID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ManufacturerID *uuid.UUID `gorm:"type:uuid;index"`

	ClientPrice       decimal.Decimal `gorm:"type:numeric(14,2)"`
	PartnerPrice      decimal.Decimal `gorm:"type:numeric(14,2)"`
	PromoClientPrice  decimal.Decimal `gorm:"type:numeric(14,2)"`
	PromoPartnerPrice decimal.Decimal `gorm:"type:numeric(14,2)"`
	FinalPrice        decimal.Decimal `gorm:"type:numeric(14,2)"`

	ImageURL         string   `gorm:"type:text"`
	AdditionalImages []string `gorm:"serializer:json;type:text"`

	Active bool   `gorm:"not null;default:true"`
	Show   bool   `gorm:"not null;default:true"`
	Status string `gorm:"type:varchar(32)"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product from a source record
func NewProduct(platform sourcing.PlatformCode, categoryID uuid.UUID, externalID, name, slug string) (*Product, error) {
	if !platform.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Unknown source platform")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Owning category is required")
	}
	if err := validateExternalID(externalID); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Platform:   platform,
		ExternalID: externalID,
		CategoryID: categoryID,
		Name:       strings.TrimSpace(name),
		Slug:       slug,
		Active:     true,
		Show:       true,
	}, nil
}

// ApplyRecord updates the mutable fields from a fresh source record and
// recomputes the derived final price. Platform, external id and slug are
// left untouched.
func (p *Product) ApplyRecord(rec sourcing.ProductRecord) error {
	if err := validateName(rec.Name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(rec.Name)
	p.Reference = rec.Reference
	if rec.Description != "" {
		p.Description = rec.Description
	}
	p.ClientPrice = rec.ClientPrice
	p.PartnerPrice = rec.PartnerPrice
	p.PromoClientPrice = rec.PromoClientPrice
	p.PromoPartnerPrice = rec.PromoPartnerPrice
	p.FinalPrice = DeriveFinalPrice(rec.ClientPrice, rec.PromoClientPrice)
	p.ImageURL = rec.ImageURL
	p.AdditionalImages = rec.AdditionalImages
	p.Active = rec.Active
	p.Show = rec.Show
	p.Status = rec.Status
	p.UpdatedAt = time.Now()
	return nil
}

// SetManufacturer assigns the manufacturer reference
func (p *Product) SetManufacturer(manufacturerID uuid.UUID) {
	p.ManufacturerID = &manufacturerID
	p.UpdatedAt = time.Now()
}

// ClearManufacturer drops the manufacturer reference
func (p *Product) ClearManufacturer() {
	p.ManufacturerID = nil
	p.UpdatedAt = time.Now()
}

// HasPrice returns true if the product carries a usable final price
func (p *Product) HasPrice() bool {
	return p.FinalPrice.IsPositive()
}

// DeriveFinalPrice computes the storefront price: the promo price wins when
// it is set and undercuts the regular client price.
func DeriveFinalPrice(clientPrice, promoClientPrice decimal.Decimal) decimal.Decimal {
	if promoClientPrice.IsPositive() && promoClientPrice.LessThan(clientPrice) {
		return promoClientPrice
	}
	return clientPrice
}

// ProductParameter links a product to one (parameter, option) pair.
// Invariant: the option must belong to the parameter; NewProductParameter
// rejects mismatches so they can never be stored.
type ProductParameter struct {
	shared.BaseEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_parameter,priority:1"`
	ParameterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_parameter,priority:2"`
	OptionID    uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ProductParameter) TableName() string {
	return "product_parameters"
}

// NewProductParameter creates a validated product-parameter association
func NewProductParameter(productID uuid.UUID, parameter *Parameter, option *ParameterOption) (*ProductParameter, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if parameter == nil || option == nil {
		return nil, shared.NewDomainError("INVALID_ASSOCIATION", "Parameter and option are required")
	}
	if option.ParameterID != parameter.ID {
		return nil, ErrOptionParameterMismatch
	}

	return &ProductParameter{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		ParameterID: parameter.ID,
		OptionID:    option.ID,
	}, nil
}

// ErrOptionParameterMismatch is returned when an option does not belong to
// the claimed parameter
var ErrOptionParameterMismatch = shared.NewDomainError("OPTION_PARAMETER_MISMATCH", "Option does not belong to the claimed parameter")
