package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// Parameter is a product attribute definition (e.g. "RAM") owned by exactly
// one category. The external id is unique within (category, platform) only:
// the same numeric id can repeat across categories on some platforms.
type Parameter struct {
	shared.BaseEntity
	CategoryID uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_parameter_cat_platform_ext,priority:1"`
	Platform   sourcing.PlatformCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_parameter_cat_platform_ext,priority:2"`
	ExternalID string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_parameter_cat_platform_ext,priority:3"`
	Name       string                `gorm:"type:varchar(255);not null"`
	SortOrder  int                   `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Parameter) TableName() string {
	return "parameters"
}

// NewParameter creates a parameter owned by the given category
func NewParameter(platform sourcing.PlatformCode, categoryID uuid.UUID, externalID, name string) (*Parameter, error) {
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

	return &Parameter{
		BaseEntity: shared.NewBaseEntity(),
		CategoryID: categoryID,
		Platform:   platform,
		ExternalID: externalID,
		Name:       strings.TrimSpace(name),
	}, nil
}

// ApplyRecord updates the mutable fields from a fresh source record
func (p *Parameter) ApplyRecord(rec sourcing.ParameterRecord) error {
	if err := validateName(rec.Name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(rec.Name)
	p.SortOrder = rec.SortOrder
	p.UpdatedAt = time.Now()
	return nil
}

// ParameterOption is one discrete value of a parameter (e.g. "16GB").
// Name is unbounded text: some source values exceed 1,500 characters.
type ParameterOption struct {
	shared.BaseEntity
	ParameterID uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_option_param_platform_ext,priority:1"`
	Platform    sourcing.PlatformCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_option_param_platform_ext,priority:2"`
	ExternalID  string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_option_param_platform_ext,priority:3"`
	Name        string                `gorm:"type:text;not null"`
	SortOrder   int                   `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ParameterOption) TableName() string {
	return "parameter_options"
}

// NewParameterOption creates an option owned by the given parameter
func NewParameterOption(platform sourcing.PlatformCode, parameterID uuid.UUID, externalID, name string) (*ParameterOption, error) {
	if !platform.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Unknown source platform")
	}
	if parameterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARAMETER", "Owning parameter is required")
	}
	if err := validateExternalID(externalID); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &ParameterOption{
		BaseEntity:  shared.NewBaseEntity(),
		ParameterID: parameterID,
		Platform:    platform,
		ExternalID:  externalID,
		Name:        strings.TrimSpace(name),
	}, nil
}

// ApplyRecord updates the mutable fields from a fresh source record
func (o *ParameterOption) ApplyRecord(rec sourcing.OptionRecord) error {
	if err := validateName(rec.Name); err != nil {
		return err
	}
	o.Name = strings.TrimSpace(rec.Name)
	o.SortOrder = rec.SortOrder
	o.UpdatedAt = time.Now()
	return nil
}
