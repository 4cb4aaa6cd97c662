package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// ProductDocument is a downloadable document attached to a product
// (datasheet, manual, certificate). External id unique within a platform.
type ProductDocument struct {
	shared.BaseEntity
	Platform   sourcing.PlatformCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_document_platform_ext,priority:1"`
	ExternalID string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_document_platform_ext,priority:2"`
	ProductID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Name       string                `gorm:"type:varchar(512);not null"`
	URL        string                `gorm:"type:text;not null"`
	Type       string                `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (ProductDocument) TableName() string {
	return "product_documents"
}

// NewProductDocument creates a document attached to the given product
func NewProductDocument(platform sourcing.PlatformCode, productID uuid.UUID, externalID, name, url string) (*ProductDocument, error) {
	if !platform.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Unknown source platform")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Owning product is required")
	}
	if err := validateExternalID(externalID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, shared.NewDomainError("INVALID_URL", "Document URL is required")
	}

	return &ProductDocument{
		BaseEntity: shared.NewBaseEntity(),
		Platform:   platform,
		ExternalID: externalID,
		ProductID:  productID,
		Name:       strings.TrimSpace(name),
		URL:        url,
	}, nil
}

// ApplyRecord updates the mutable fields from a fresh source record
func (d *ProductDocument) ApplyRecord(rec sourcing.DocumentRecord) error {
	if strings.TrimSpace(rec.URL) == "" {
		return shared.NewDomainError("INVALID_URL", "Document URL is required")
	}
	d.Name = strings.TrimSpace(rec.Name)
	d.URL = rec.URL
	d.Type = rec.Type
	d.UpdatedAt = time.Now()
	return nil
}
