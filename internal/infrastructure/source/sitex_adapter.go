package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/sourcing"
	"github.com/vitrina/backend/internal/infrastructure/config"
)

// SitexAdapter implements sourcing.SourceAdapter for the SITEX vendor, a
// bearer-token-authenticated JSON REST API with numeric identifiers.
type SitexAdapter struct {
	baseURL string
	token   string
	http    *httpClient
	logger  *zap.Logger
}

// NewSitexAdapter creates a new SITEX adapter
func NewSitexAdapter(cfg config.SourceConfig, logger *zap.Logger) *SitexAdapter {
	return &SitexAdapter{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    newHTTPClient(cfg, logger),
		logger:  logger,
	}
}

// PlatformCode returns the platform this adapter talks to
func (a *SitexAdapter) PlatformCode() sourcing.PlatformCode {
	return sourcing.PlatformCodeSitex
}

// ---------------------------------------------------------------------------
// Wire DTOs
// ---------------------------------------------------------------------------

type sitexCategory struct {
	ID        int64  `json:"id"`
	ParentID  int64  `json:"parent_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	Visible   bool   `json:"visible"`
}

type sitexAddress struct {
	Company string `json:"company"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type sitexManufacturer struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Info  *sitexAddress `json:"info"`
	EURep *sitexAddress `json:"eu_representative"`
}

type sitexOption struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type sitexParameter struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	SortOrder int           `json:"sort_order"`
	Options   []sitexOption `json:"options"`
}

type sitexParameterValue struct {
	ParameterID int64 `json:"parameter_id"`
	OptionID    int64 `json:"option_id"`
}

type sitexProduct struct {
	ID                int64                 `json:"id"`
	CategoryID        int64                 `json:"category_id"`
	ManufacturerID    int64                 `json:"manufacturer_id"`
	Reference         string                `json:"reference"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	ClientPrice       decimal.Decimal       `json:"client_price"`
	PartnerPrice      decimal.Decimal       `json:"partner_price"`
	PromoClientPrice  decimal.Decimal       `json:"promo_client_price"`
	PromoPartnerPrice decimal.Decimal       `json:"promo_partner_price"`
	Parameters        []sitexParameterValue `json:"parameters"`
	Image             string                `json:"image"`
	Images            []string              `json:"images"`
	Active            bool                  `json:"active"`
	Show              bool                  `json:"show"`
	Status            string                `json:"status"`
}

type sitexDocument struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Type      string `json:"type"`
}

// ---------------------------------------------------------------------------
// Fetch operations
// ---------------------------------------------------------------------------

// FetchCategories fetches the full flat category list
func (a *SitexAdapter) FetchCategories(ctx context.Context) []sourcing.CategoryRecord {
	var payload []sitexCategory
	if !a.fetch(ctx, "/categories", &payload) {
		return nil
	}

	records := make([]sourcing.CategoryRecord, 0, len(payload))
	for _, c := range payload {
		records = append(records, sourcing.CategoryRecord{
			ExternalID:       strconv.FormatInt(c.ID, 10),
			ParentExternalID: formatOptionalID(c.ParentID),
			Name:             c.Name,
			SortOrder:        c.SortOrder,
			Visible:          c.Visible,
		})
	}
	return records
}

// FetchManufacturers fetches the full manufacturer list
func (a *SitexAdapter) FetchManufacturers(ctx context.Context) []sourcing.ManufacturerRecord {
	var payload []sitexManufacturer
	if !a.fetch(ctx, "/manufacturers", &payload) {
		return nil
	}

	records := make([]sourcing.ManufacturerRecord, 0, len(payload))
	for _, m := range payload {
		records = append(records, sourcing.ManufacturerRecord{
			ExternalID: strconv.FormatInt(m.ID, 10),
			Name:       m.Name,
			Info:       toAddressBlock(m.Info),
			EURep:      toAddressBlock(m.EURep),
		})
	}
	return records
}

// FetchParameters fetches the parameter definitions for one category
func (a *SitexAdapter) FetchParameters(ctx context.Context, categoryExternalID string) []sourcing.ParameterRecord {
	path := fmt.Sprintf("/categories/%s/parameters", url.PathEscape(categoryExternalID))
	var payload []sitexParameter
	if !a.fetch(ctx, path, &payload) {
		return nil
	}

	records := make([]sourcing.ParameterRecord, 0, len(payload))
	for _, p := range payload {
		options := make([]sourcing.OptionRecord, 0, len(p.Options))
		for _, o := range p.Options {
			options = append(options, sourcing.OptionRecord{
				ExternalID: strconv.FormatInt(o.ID, 10),
				Name:       o.Name,
				SortOrder:  o.SortOrder,
			})
		}
		records = append(records, sourcing.ParameterRecord{
			ExternalID:         strconv.FormatInt(p.ID, 10),
			CategoryExternalID: categoryExternalID,
			Name:               p.Name,
			SortOrder:          p.SortOrder,
			Options:            options,
		})
	}
	return records
}

// FetchProducts fetches the products of one category
func (a *SitexAdapter) FetchProducts(ctx context.Context, categoryExternalID string) []sourcing.ProductRecord {
	path := fmt.Sprintf("/categories/%s/products", url.PathEscape(categoryExternalID))
	var payload []sitexProduct
	if !a.fetch(ctx, path, &payload) {
		return nil
	}

	records := make([]sourcing.ProductRecord, 0, len(payload))
	for _, p := range payload {
		refs := make([]sourcing.ParameterValueRef, 0, len(p.Parameters))
		for _, pv := range p.Parameters {
			refs = append(refs, sourcing.ParameterValueRef{
				ParameterExternalID: strconv.FormatInt(pv.ParameterID, 10),
				OptionExternalID:    strconv.FormatInt(pv.OptionID, 10),
			})
		}
		records = append(records, sourcing.ProductRecord{
			ExternalID:             strconv.FormatInt(p.ID, 10),
			CategoryExternalID:     strconv.FormatInt(p.CategoryID, 10),
			ManufacturerExternalID: formatOptionalID(p.ManufacturerID),
			Reference:              p.Reference,
			Name:                   p.Name,
			Description:            p.Description,
			ClientPrice:            p.ClientPrice,
			PartnerPrice:           p.PartnerPrice,
			PromoClientPrice:       p.PromoClientPrice,
			PromoPartnerPrice:      p.PromoPartnerPrice,
			Parameters:             refs,
			ImageURL:               p.Image,
			AdditionalImages:       p.Images,
			Active:                 p.Active,
			Show:                   p.Show,
			Status:                 p.Status,
		})
	}
	return records
}

// FetchDocuments fetches product documents. An empty productExternalID
// requests the full document list.
func (a *SitexAdapter) FetchDocuments(ctx context.Context, productExternalID string) []sourcing.DocumentRecord {
	path := "/documents"
	if productExternalID != "" {
		path += "?product_id=" + url.QueryEscape(productExternalID)
	}
	var payload []sitexDocument
	if !a.fetch(ctx, path, &payload) {
		return nil
	}

	records := make([]sourcing.DocumentRecord, 0, len(payload))
	for _, d := range payload {
		records = append(records, sourcing.DocumentRecord{
			ExternalID:        strconv.FormatInt(d.ID, 10),
			ProductExternalID: strconv.FormatInt(d.ProductID, 10),
			Name:              d.Name,
			URL:               d.URL,
			Type:              d.Type,
		})
	}
	return records
}

// fetch performs an authenticated GET and decodes the JSON body into out.
// Any failure is logged and reported as false; callers degrade to an empty
// result.
func (a *SitexAdapter) fetch(ctx context.Context, path string, out any) bool {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+a.token)

	body, err := a.http.get(ctx, a.baseURL+path, header)
	if err != nil {
		a.logger.Warn("sitex fetch failed, degrading to empty result",
			zap.String("path", path),
			zap.Error(err),
		)
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		a.logger.Warn("sitex response malformed, degrading to empty result",
			zap.String("path", path),
			zap.Error(fmt.Errorf("%w: %w", sourcing.ErrSourceInvalidResponse, err)),
		)
		return false
	}
	return true
}

func formatOptionalID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func toAddressBlock(a *sitexAddress) *sourcing.AddressBlock {
	if a == nil {
		return nil
	}
	return &sourcing.AddressBlock{
		Company: a.Company,
		Street:  a.Street,
		City:    a.City,
		Zip:     a.Zip,
		Country: a.Country,
		Email:   a.Email,
		Phone:   a.Phone,
	}
}
