package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// Category represents a product category reconciled from a source platform.
// Categories form a forest: ParentID is nil for roots. Rows are created on
// first sighting of an external id and only updated afterwards; deletion is
// an administrative action outside reconciliation.
type Category struct {
	shared.BaseEntity
	Platform   sourcing.PlatformCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_category_platform_ext,priority:1"`
	ExternalID string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_category_platform_ext,priority:2"`
	Name       string                `gorm:"type:varchar(255);not null"`
	Slug       string                `gorm:"type:varchar(255);not null;uniqueIndex"`
	ParentID   *uuid.UUID            `gorm:"type:uuid;index"`
	SortOrder  int                   `gorm:"not null;default:0"`
	Visible    bool                  `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category from a source record. The platform is
// immutable once set.
func NewCategory(platform sourcing.PlatformCode, externalID, name, slug string) (*Category, error) {
	if !platform.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Unknown source platform")
	}
	if err := validateExternalID(externalID); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Platform:   platform,
		ExternalID: externalID,
		Name:       strings.TrimSpace(name),
		Slug:       slug,
		Visible:    true,
	}, nil
}

// ApplyRecord updates the mutable fields from a fresh source record.
// Platform, external id and slug are left untouched.
func (c *Category) ApplyRecord(rec sourcing.CategoryRecord) error {
	if err := validateName(rec.Name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(rec.Name)
	c.SortOrder = rec.SortOrder
	c.Visible = rec.Visible
	c.UpdatedAt = time.Now()
	return nil
}

// SetParent assigns the parent reference. Self-parenting is rejected.
func (c *Category) SetParent(parentID uuid.UUID) error {
	if parentID == c.ID {
		return shared.NewDomainError("SELF_PARENT", "Category cannot be its own parent")
	}
	c.ParentID = &parentID
	c.UpdatedAt = time.Now()
	return nil
}

// ClearParent makes the category a root node
func (c *Category) ClearParent() {
	c.ParentID = nil
	c.UpdatedAt = time.Now()
}

// IsRoot returns true if the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

func validateExternalID(id string) error {
	if strings.TrimSpace(id) == "" {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "External identifier is required")
	}
	if len(id) > 64 {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "External identifier exceeds 64 characters")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name is required")
	}
	return nil
}
