package catalog

import (
	"strings"
	"time"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// Address holds a manufacturer contact/legal address block.
// Embedded twice on Manufacturer: the informational block and the
// EU-representative block required for product compliance labeling.
type Address struct {
	Company string `gorm:"type:varchar(255)"`
	Street  string `gorm:"type:varchar(255)"`
	City    string `gorm:"type:varchar(128)"`
	Zip     string `gorm:"type:varchar(32)"`
	Country string `gorm:"type:varchar(64)"`
	Email   string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(64)"`
}

// IsEmpty returns true if no field of the block is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Manufacturer represents a product manufacturer reconciled from a source
// platform. The external identifier is unique within a platform.
type Manufacturer struct {
	shared.BaseEntity
	Platform   sourcing.PlatformCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_manufacturer_platform_ext,priority:1"`
	ExternalID string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_manufacturer_platform_ext,priority:2"`
	Name       string                `gorm:"type:varchar(255);not null"`
	Info       Address               `gorm:"embedded;embeddedPrefix:info_"`
	EURep      Address               `gorm:"embedded;embeddedPrefix:eu_rep_"`
}

// TableName returns the table name for GORM
func (Manufacturer) TableName() string {
	return "manufacturers"
}

// NewManufacturer creates a manufacturer from a source record
func NewManufacturer(platform sourcing.PlatformCode, externalID, name string) (*Manufacturer, error) {
	if !platform.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Unknown source platform")
	}
	if err := validateExternalID(externalID); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Manufacturer{
		BaseEntity: shared.NewBaseEntity(),
		Platform:   platform,
		ExternalID: externalID,
		Name:       strings.TrimSpace(name),
	}, nil
}

// ApplyRecord updates the mutable fields from a fresh source record
func (m *Manufacturer) ApplyRecord(rec sourcing.ManufacturerRecord) error {
	if err := validateName(rec.Name); err != nil {
		return err
	}
	m.Name = strings.TrimSpace(rec.Name)
	if rec.Info != nil {
		m.Info = addressFromBlock(*rec.Info)
	}
	if rec.EURep != nil {
		m.EURep = addressFromBlock(*rec.EURep)
	}
	m.UpdatedAt = time.Now()
	return nil
}

func addressFromBlock(b sourcing.AddressBlock) Address {
	return Address{
		Company: b.Company,
		Street:  b.Street,
		City:    b.City,
		Zip:     b.Zip,
		Country: b.Country,
		Email:   b.Email,
		Phone:   b.Phone,
	}
}
