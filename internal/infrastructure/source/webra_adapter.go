package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/sourcing"
	"github.com/vitrina/backend/internal/infrastructure/config"
)

// WebraAdapter implements sourcing.SourceAdapter for the WEBRA vendor.
// WEBRA exposes no JSON API: the whole catalog is one query-string
// authenticated XML document with the category tree and a flat product list
// carrying nested attribute and image elements. The parsed feed is cached
// with a TTL so the five stage fetches of a run share one download.
//
// Optional sub-elements are frequently absent per record; every nested
// field is parsed leniently.
type WebraAdapter struct {
	baseURL string
	token   string
	feedTTL time.Duration
	http    *httpClient
	cache   *sourcing.FeedCache[*webraFeed]
	logger  *zap.Logger
}

// NewWebraAdapter creates a new WEBRA adapter
func NewWebraAdapter(cfg config.SourceConfig, logger *zap.Logger) *WebraAdapter {
	return &WebraAdapter{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		feedTTL: cfg.FeedTTL,
		http:    newHTTPClient(cfg, logger),
		cache:   sourcing.NewFeedCache[*webraFeed](),
		logger:  logger,
	}
}

// PlatformCode returns the platform this adapter talks to
func (a *WebraAdapter) PlatformCode() sourcing.PlatformCode {
	return sourcing.PlatformCodeWebra
}

// InvalidateFeed discards the cached feed so the next fetch downloads a
// fresh document.
func (a *WebraAdapter) InvalidateFeed() {
	a.cache.Invalidate()
}

// ---------------------------------------------------------------------------
// Wire DTOs
// ---------------------------------------------------------------------------

type webraFeed struct {
	XMLName    xml.Name        `xml:"catalog"`
	Categories []webraCategory `xml:"categories>category"`
	Products   []webraProduct  `xml:"products>product"`
}

type webraCategory struct {
	ID     string `xml:"id,attr"`
	Parent string `xml:"parent,attr"`
	Name   string `xml:"name"`
	Order  *int   `xml:"order"`
}

type webraBrand struct {
	ID   string `xml:"id,attr"`
	Name string `xml:",chardata"`
}

type webraAttribute struct {
	ID     string  `xml:"id,attr"`
	Option string  `xml:"option,attr"`
	Name   *string `xml:"name"`
	Value  *string `xml:"value"`
}

type webraImage struct {
	Main string `xml:"main,attr"`
	URL  string `xml:",chardata"`
}

type webraProduct struct {
	ID           string           `xml:"id,attr"`
	Category     string           `xml:"category"`
	Brand        *webraBrand      `xml:"brand"`
	Reference    *string          `xml:"reference"`
	Name         string           `xml:"name"`
	Description  *string          `xml:"description"`
	PriceClient  *string          `xml:"price_client"`
	PricePartner *string          `xml:"price_partner"`
	PromoClient  *string          `xml:"promo_client"`
	PromoPartner *string          `xml:"promo_partner"`
	Attributes   []webraAttribute `xml:"attributes>attribute"`
	Images       []webraImage     `xml:"images>image"`
	Active       *string          `xml:"active"`
	Status       *string          `xml:"status"`
}

// ---------------------------------------------------------------------------
// Fetch operations
// ---------------------------------------------------------------------------

// FetchCategories fetches the full flat category list
func (a *WebraAdapter) FetchCategories(ctx context.Context) []sourcing.CategoryRecord {
	feed := a.feed(ctx)
	if feed == nil {
		return nil
	}

	records := make([]sourcing.CategoryRecord, 0, len(feed.Categories))
	for _, c := range feed.Categories {
		sortOrder := 0
		if c.Order != nil {
			sortOrder = *c.Order
		}
		records = append(records, sourcing.CategoryRecord{
			ExternalID:       c.ID,
			ParentExternalID: c.Parent,
			Name:             c.Name,
			SortOrder:        sortOrder,
			Visible:          true,
		})
	}
	return records
}

// FetchManufacturers derives the manufacturer list from the product brands
// in the feed. WEBRA has no dedicated manufacturer endpoint.
func (a *WebraAdapter) FetchManufacturers(ctx context.Context) []sourcing.ManufacturerRecord {
	feed := a.feed(ctx)
	if feed == nil {
		return nil
	}

	seen := make(map[string]bool)
	var records []sourcing.ManufacturerRecord
	for _, p := range feed.Products {
		if p.Brand == nil || p.Brand.ID == "" || seen[p.Brand.ID] {
			continue
		}
		seen[p.Brand.ID] = true
		records = append(records, sourcing.ManufacturerRecord{
			ExternalID: p.Brand.ID,
			Name:       p.Brand.Name,
		})
	}
	return records
}

// FetchParameters derives parameter definitions from the attributes of the
// category's products. Option sets are collected across all products.
func (a *WebraAdapter) FetchParameters(ctx context.Context, categoryExternalID string) []sourcing.ParameterRecord {
	feed := a.feed(ctx)
	if feed == nil {
		return nil
	}

	type paramEntry struct {
		record  *sourcing.ParameterRecord
		options map[string]bool
	}
	params := make(map[string]*paramEntry)
	var order []string

	for _, p := range feed.Products {
		if p.Category != categoryExternalID {
			continue
		}
		for _, attr := range p.Attributes {
			if attr.ID == "" || attr.Option == "" {
				continue
			}
			entry, ok := params[attr.ID]
			if !ok {
				name := "Attribute " + attr.ID
				if attr.Name != nil && *attr.Name != "" {
					name = *attr.Name
				}
				entry = &paramEntry{
					record: &sourcing.ParameterRecord{
						ExternalID:         attr.ID,
						CategoryExternalID: categoryExternalID,
						Name:               name,
					},
					options: make(map[string]bool),
				}
				params[attr.ID] = entry
				order = append(order, attr.ID)
			}
			if entry.options[attr.Option] {
				continue
			}
			entry.options[attr.Option] = true
			optionName := attr.Option
			if attr.Value != nil && *attr.Value != "" {
				optionName = *attr.Value
			}
			entry.record.Options = append(entry.record.Options, sourcing.OptionRecord{
				ExternalID: attr.Option,
				Name:       optionName,
			})
		}
	}

	records := make([]sourcing.ParameterRecord, 0, len(order))
	for _, id := range order {
		records = append(records, *params[id].record)
	}
	return records
}

// FetchProducts fetches the products of one category
func (a *WebraAdapter) FetchProducts(ctx context.Context, categoryExternalID string) []sourcing.ProductRecord {
	feed := a.feed(ctx)
	if feed == nil {
		return nil
	}

	var records []sourcing.ProductRecord
	for _, p := range feed.Products {
		if p.Category != categoryExternalID {
			continue
		}

		record := sourcing.ProductRecord{
			ExternalID:         p.ID,
			CategoryExternalID: p.Category,
			Name:               p.Name,
			Reference:          stringOrEmpty(p.Reference),
			Description:        stringOrEmpty(p.Description),
			ClientPrice:        parsePrice(p.PriceClient),
			PartnerPrice:       parsePrice(p.PricePartner),
			PromoClientPrice:   parsePrice(p.PromoClient),
			PromoPartnerPrice:  parsePrice(p.PromoPartner),
			Active:             parseFlag(p.Active, true),
			Show:               true,
			Status:             stringOrEmpty(p.Status),
		}
		if p.Brand != nil {
			record.ManufacturerExternalID = p.Brand.ID
		}
		for _, attr := range p.Attributes {
			if attr.ID == "" || attr.Option == "" {
				continue
			}
			record.Parameters = append(record.Parameters, sourcing.ParameterValueRef{
				ParameterExternalID: attr.ID,
				OptionExternalID:    attr.Option,
			})
		}
		for _, img := range p.Images {
			if img.URL == "" {
				continue
			}
			if img.Main == "true" && record.ImageURL == "" {
				record.ImageURL = img.URL
				continue
			}
			record.AdditionalImages = append(record.AdditionalImages, img.URL)
		}
		records = append(records, record)
	}
	return records
}

// FetchDocuments always returns nil: the WEBRA feed carries no documents.
func (a *WebraAdapter) FetchDocuments(ctx context.Context, productExternalID string) []sourcing.DocumentRecord {
	return nil
}

// feed returns the parsed feed, downloading it if the cache is absent or
// stale. Download failures degrade to nil with a warning.
func (a *WebraAdapter) feed(ctx context.Context) *webraFeed {
	if !a.cache.IsStale(a.feedTTL) {
		if cached, ok := a.cache.Get(); ok {
			return cached
		}
	}

	feedURL := a.baseURL + "/feed.xml?key=" + url.QueryEscape(a.token)
	body, err := a.http.get(ctx, feedURL, nil)
	if err != nil {
		a.logger.Warn("webra feed fetch failed, degrading to empty result", zap.Error(err))
		return nil
	}

	var feed webraFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		a.logger.Warn("webra feed malformed, degrading to empty result",
			zap.Error(fmt.Errorf("%w: %w", sourcing.ErrSourceInvalidResponse, err)))
		return nil
	}

	a.cache.Set(&feed)
	return &feed
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parsePrice(s *string) decimal.Decimal {
	if s == nil || *s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseFlag(s *string, fallback bool) bool {
	if s == nil || *s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(*s)
	if err != nil {
		return *s == "1"
	}
	return v
}
