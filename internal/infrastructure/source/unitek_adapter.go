package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/sourcing"
	"github.com/vitrina/backend/internal/infrastructure/config"
)

// UnitekAdapter implements sourcing.SourceAdapter for the UNITEK vendor, a
// JSON REST API with opaque string identifiers and a paginated response
// envelope. Every list fetch walks the pages until the envelope reports the
// last one.
type UnitekAdapter struct {
	baseURL  string
	token    string
	pageSize int
	maxPages int
	http     *httpClient
	logger   *zap.Logger
}

// defaultMaxPages bounds the page walk when no limit is configured
const defaultMaxPages = 500

// NewUnitekAdapter creates a new UNITEK adapter
func NewUnitekAdapter(cfg config.SourceConfig, logger *zap.Logger) *UnitekAdapter {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &UnitekAdapter{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		pageSize: cfg.PageSize,
		maxPages: maxPages,
		http:     newHTTPClient(cfg, logger),
		logger:   logger,
	}
}

// PlatformCode returns the platform this adapter talks to
func (a *UnitekAdapter) PlatformCode() sourcing.PlatformCode {
	return sourcing.PlatformCodeUnitek
}

// ---------------------------------------------------------------------------
// Wire DTOs
// ---------------------------------------------------------------------------

// unitekEnvelope is the paginated response wrapper shared by all endpoints
type unitekEnvelope struct {
	Items      json.RawMessage `json:"items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

type unitekCategory struct {
	Key       string `json:"key"`
	ParentKey string `json:"parent_key"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	Hidden    bool   `json:"hidden"`
}

type unitekManufacturer struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Country string `json:"country"`
	Email   string `json:"email"`
}

type unitekOption struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type unitekParameter struct {
	Key      string         `json:"key"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
	Values   []unitekOption `json:"values"`
}

type unitekProduct struct {
	Key             string            `json:"key"`
	CategoryKey     string            `json:"category_key"`
	ManufacturerKey string            `json:"manufacturer_key"`
	SKU             string            `json:"sku"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Price           decimal.Decimal   `json:"price"`
	TradePrice      decimal.Decimal   `json:"trade_price"`
	Attributes      map[string]string `json:"attributes"`
	MainImage       string            `json:"main_image"`
	Gallery         []string          `json:"gallery"`
	Available       bool              `json:"available"`
	State           string            `json:"state"`
}

// ---------------------------------------------------------------------------
// Fetch operations
// ---------------------------------------------------------------------------

// FetchCategories fetches the full flat category list
func (a *UnitekAdapter) FetchCategories(ctx context.Context) []sourcing.CategoryRecord {
	var records []sourcing.CategoryRecord
	ok := a.fetchPaginated(ctx, "/v2/categories", func(items json.RawMessage) error {
		var payload []unitekCategory
		if err := json.Unmarshal(items, &payload); err != nil {
			return err
		}
		for _, c := range payload {
			records = append(records, sourcing.CategoryRecord{
				ExternalID:       c.Key,
				ParentExternalID: c.ParentKey,
				Name:             c.Title,
				SortOrder:        c.Position,
				Visible:          !c.Hidden,
			})
		}
		return nil
	})
	if !ok {
		return nil
	}
	return records
}

// FetchManufacturers fetches the full manufacturer list
func (a *UnitekAdapter) FetchManufacturers(ctx context.Context) []sourcing.ManufacturerRecord {
	var records []sourcing.ManufacturerRecord
	ok := a.fetchPaginated(ctx, "/v2/manufacturers", func(items json.RawMessage) error {
		var payload []unitekManufacturer
		if err := json.Unmarshal(items, &payload); err != nil {
			return err
		}
		for _, m := range payload {
			record := sourcing.ManufacturerRecord{
				ExternalID: m.Key,
				Name:       m.Title,
			}
			if m.Country != "" || m.Email != "" {
				record.Info = &sourcing.AddressBlock{
					Country: m.Country,
					Email:   m.Email,
				}
			}
			records = append(records, record)
		}
		return nil
	})
	if !ok {
		return nil
	}
	return records
}

// FetchParameters fetches the parameter definitions for one category
func (a *UnitekAdapter) FetchParameters(ctx context.Context, categoryExternalID string) []sourcing.ParameterRecord {
	path := fmt.Sprintf("/v2/categories/%s/parameters", url.PathEscape(categoryExternalID))

	var records []sourcing.ParameterRecord
	ok := a.fetchPaginated(ctx, path, func(items json.RawMessage) error {
		var payload []unitekParameter
		if err := json.Unmarshal(items, &payload); err != nil {
			return err
		}
		for _, p := range payload {
			options := make([]sourcing.OptionRecord, 0, len(p.Values))
			for _, v := range p.Values {
				options = append(options, sourcing.OptionRecord{
					ExternalID: v.Key,
					Name:       v.Title,
					SortOrder:  v.Position,
				})
			}
			records = append(records, sourcing.ParameterRecord{
				ExternalID:         p.Key,
				CategoryExternalID: categoryExternalID,
				Name:               p.Title,
				SortOrder:          p.Position,
				Options:            options,
			})
		}
		return nil
	})
	if !ok {
		return nil
	}
	return records
}

// FetchProducts fetches the products of one category
func (a *UnitekAdapter) FetchProducts(ctx context.Context, categoryExternalID string) []sourcing.ProductRecord {
	path := fmt.Sprintf("/v2/categories/%s/products", url.PathEscape(categoryExternalID))

	var records []sourcing.ProductRecord
	ok := a.fetchPaginated(ctx, path, func(items json.RawMessage) error {
		var payload []unitekProduct
		if err := json.Unmarshal(items, &payload); err != nil {
			return err
		}
		for _, p := range payload {
			record := sourcing.ProductRecord{
				ExternalID:             p.Key,
				CategoryExternalID:     p.CategoryKey,
				ManufacturerExternalID: p.ManufacturerKey,
				Reference:              p.SKU,
				Name:                   p.Title,
				Description:            p.Description,
				ClientPrice:            p.Price,
				PartnerPrice:           p.TradePrice,
				ImageURL:               p.MainImage,
				AdditionalImages:       p.Gallery,
				Active:                 p.Available,
				Show:                   p.Available,
				Status:                 p.State,
			}
			for parameterKey, optionKey := range p.Attributes {
				if parameterKey == "" || optionKey == "" {
					continue
				}
				record.Parameters = append(record.Parameters, sourcing.ParameterValueRef{
					ParameterExternalID: parameterKey,
					OptionExternalID:    optionKey,
				})
			}
			records = append(records, record)
		}
		return nil
	})
	if !ok {
		return nil
	}
	return records
}

// FetchDocuments always returns nil: UNITEK exposes no document endpoint.
func (a *UnitekAdapter) FetchDocuments(ctx context.Context, productExternalID string) []sourcing.DocumentRecord {
	return nil
}

// fetchPaginated walks the paginated envelope pages of an endpoint, feeding
// each page's raw items to collect. Any failure is logged and reported as
// false; callers degrade to an empty result. The walk stops at maxPages no
// matter what total the server reports, so a broken or hostile endpoint
// cannot keep a fetch spinning.
func (a *UnitekAdapter) fetchPaginated(ctx context.Context, path string, collect func(json.RawMessage) error) bool {
	header := http.Header{}
	header.Set("X-Api-Key", a.token)

	separator := "?"
	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s%s%spage=%d&per_page=%d", a.baseURL, path, separator, page, a.pageSize)

		body, err := a.http.get(ctx, pageURL, header)
		if err != nil {
			a.logger.Warn("unitek fetch failed, degrading to empty result",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(err),
			)
			return false
		}

		var envelope unitekEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			a.logger.Warn("unitek response malformed, degrading to empty result",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(fmt.Errorf("%w: %w", sourcing.ErrSourceInvalidResponse, err)),
			)
			return false
		}

		if err := collect(envelope.Items); err != nil {
			a.logger.Warn("unitek items malformed, degrading to empty result",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(fmt.Errorf("%w: %w", sourcing.ErrSourceInvalidResponse, err)),
			)
			return false
		}

		if envelope.TotalPages <= 0 || page >= envelope.TotalPages {
			return true
		}
		if page >= a.maxPages {
			a.logger.Warn("unitek page walk hit the page ceiling, truncating fetch",
				zap.String("path", path),
				zap.Int("max_pages", a.maxPages),
				zap.Int("reported_total", envelope.TotalPages),
			)
			return true
		}
	}
}
