package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// Options carries engine tuning shared by every stage
type Options struct {
	BatchSize      int
	SmallBatchSize int
	FlushEvery     int
	BatchBudget    time.Duration
	BatchPause     time.Duration
	Policy         Policy
}

// DefaultOptions returns the stock tuning
func DefaultOptions() Options {
	return Options{
		BatchSize:      DefaultBatchSize,
		SmallBatchSize: SmallBatchSize,
		FlushEvery:     DefaultFlushEvery,
		BatchBudget:    DefaultBatchBudget,
		BatchPause:     DefaultBatchPause,
	}
}

// RunSummary is the caller-facing result of one recorded run
type RunSummary struct {
	RunID    int64                 `json:"run_id"`
	Type     domainsync.SyncType   `json:"type"`
	Platform sourcing.PlatformCode `json:"platform"`
	Status   domainsync.SyncStatus `json:"status"`
	Outcome  Outcome               `json:"outcome"`
	Duration time.Duration         `json:"duration"`
}

type guardKey struct {
	platform sourcing.PlatformCode
	syncType domainsync.SyncType
}

// CatalogSyncService orchestrates the reconciliation pipeline. Stages run
// sequentially in dependency order; concurrent runs of the same (platform,
// type) pair are rejected with ErrSyncInProgress rather than queued.
type CatalogSyncService struct {
	adapters      map[sourcing.PlatformCode]sourcing.SourceAdapter
	categories    catalog.CategoryRepository
	manufacturers catalog.ManufacturerRepository
	parameters    catalog.ParameterRepository
	options       catalog.ParameterOptionRepository
	products      catalog.ProductRepository
	documents     catalog.ProductDocumentRepository

	hierarchy  *HierarchyResolver
	paramGraph *ParameterGraphResolver
	recorder   *AuditRecorder

	opts   Options
	logger *zap.Logger
	tracer trace.Tracer

	// one slot per (platform, type); a full slot means a run is active
	guards map[guardKey]chan struct{}
}

// NewCatalogSyncService wires the reconciliation pipeline
func NewCatalogSyncService(
	adapters []sourcing.SourceAdapter,
	categories catalog.CategoryRepository,
	manufacturers catalog.ManufacturerRepository,
	parameters catalog.ParameterRepository,
	options catalog.ParameterOptionRepository,
	products catalog.ProductRepository,
	documents catalog.ProductDocumentRepository,
	recorder *AuditRecorder,
	opts Options,
	logger *zap.Logger,
	tracer trace.Tracer,
) *CatalogSyncService {
	byPlatform := make(map[sourcing.PlatformCode]sourcing.SourceAdapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.PlatformCode()] = a
	}
	guards := make(map[guardKey]chan struct{})
	for _, p := range sourcing.AllPlatformCodes() {
		for _, t := range domainsync.AllSyncTypes() {
			guards[guardKey{p, t}] = make(chan struct{}, 1)
		}
		guards[guardKey{p, domainsync.SyncTypeFull}] = make(chan struct{}, 1)
	}
	return &CatalogSyncService{
		adapters:      byPlatform,
		categories:    categories,
		manufacturers: manufacturers,
		parameters:    parameters,
		options:       options,
		products:      products,
		documents:     documents,
		hierarchy:     NewHierarchyResolver(categories, logger),
		paramGraph:    NewParameterGraphResolver(parameters, options, logger),
		recorder:      recorder,
		opts:          opts,
		logger:        logger,
		tracer:        tracer,
		guards:        guards,
	}
}

// ---------------------------------------------------------------------------
// Public stage triggers
// ---------------------------------------------------------------------------

// SyncCategories reconciles the platform's category tree
func (s *CatalogSyncService) SyncCategories(ctx context.Context, platform sourcing.PlatformCode) (*RunSummary, error) {
	return s.run(ctx, domainsync.SyncTypeCategories, platform, s.syncCategories)
}

// SyncManufacturers reconciles the platform's manufacturer list
func (s *CatalogSyncService) SyncManufacturers(ctx context.Context, platform sourcing.PlatformCode) (*RunSummary, error) {
	return s.run(ctx, domainsync.SyncTypeManufacturers, platform, s.syncManufacturers)
}

// SyncParameters reconciles parameters and their options for every category
// of the platform
func (s *CatalogSyncService) SyncParameters(ctx context.Context, platform sourcing.PlatformCode) (*RunSummary, error) {
	return s.run(ctx, domainsync.SyncTypeParameters, platform, func(ctx context.Context, adapter sourcing.SourceAdapter) (Outcome, error) {
		return s.syncParameters(ctx, adapter, "")
	})
}

// SyncProducts reconciles products category by category
func (s *CatalogSyncService) SyncProducts(ctx context.Context, platform sourcing.PlatformCode) (*RunSummary, error) {
	return s.run(ctx, domainsync.SyncTypeProducts, platform, func(ctx context.Context, adapter sourcing.SourceAdapter) (Outcome, error) {
		return s.syncProducts(ctx, adapter, "")
	})
}

// SyncDocuments reconciles the platform's product documents
func (s *CatalogSyncService) SyncDocuments(ctx context.Context, platform sourcing.PlatformCode) (*RunSummary, error) {
	return s.run(ctx, domainsync.SyncTypeDocuments, platform, s.syncDocuments)
}

// ResyncCategory re-runs parameters and products for a single category,
// recorded as one PRODUCTS run. Operational remediation hook.
func (s *CatalogSyncService) ResyncCategory(ctx context.Context, platform sourcing.PlatformCode, categoryExternalID string) (*RunSummary, error) {
	return s.run(ctx, domainsync.SyncTypeProducts, platform, func(ctx context.Context, adapter sourcing.SourceAdapter) (Outcome, error) {
		var out Outcome
		paramOut, err := s.syncParameters(ctx, adapter, categoryExternalID)
		out.Merge(paramOut)
		if err != nil {
			return out, err
		}
		prodOut, err := s.syncProducts(ctx, adapter, categoryExternalID)
		out.Merge(prodOut)
		return out, err
	})
}

// ResyncProduct re-reconciles a single product from its category feed,
// recorded as one PRODUCTS run
func (s *CatalogSyncService) ResyncProduct(ctx context.Context, platform sourcing.PlatformCode, productExternalID string) (*RunSummary, error) {
	return s.run(ctx, domainsync.SyncTypeProducts, platform, func(ctx context.Context, adapter sourcing.SourceAdapter) (Outcome, error) {
		return s.resyncProduct(ctx, adapter, productExternalID)
	})
}

// SyncFull runs the whole pipeline in dependency order. Each stage records
// its own run; the FULL run aggregates them. A stage's systemic failure is
// logged and the remaining stages still run, since committed work from
// earlier stages is independent.
func (s *CatalogSyncService) SyncFull(ctx context.Context, platform sourcing.PlatformCode) (*RunSummary, error) {
	if _, err := s.adapter(platform); err != nil {
		return nil, err
	}
	release, err := s.acquire(platform, domainsync.SyncTypeFull)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := s.tracer.Start(ctx, "sync.full",
		trace.WithAttributes(attribute.String("platform", string(platform))))
	defer span.End()

	run := s.recorder.Begin(ctx, domainsync.SyncTypeFull, platform)
	started := time.Now()

	var out Outcome
	var firstErr error
	stages := []func(context.Context, sourcing.PlatformCode) (*RunSummary, error){
		s.SyncCategories,
		s.SyncManufacturers,
		s.SyncParameters,
		s.SyncProducts,
		s.SyncDocuments,
	}
	for _, stage := range stages {
		summary, err := stage(ctx, platform)
		if summary != nil {
			out.Merge(summary.Outcome)
		}
		if err != nil {
			s.logger.Error("pipeline stage failed, continuing with remaining stages",
				zap.String("platform", string(platform)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	duration := time.Since(started)
	status := s.recorder.Finish(ctx, run, out, firstErr, duration)
	return &RunSummary{
		RunID:    run.ID,
		Type:     domainsync.SyncTypeFull,
		Platform: platform,
		Status:   status,
		Outcome:  out,
		Duration: duration,
	}, firstErr
}

// ---------------------------------------------------------------------------
// Run wrapper
// ---------------------------------------------------------------------------

func (s *CatalogSyncService) adapter(platform sourcing.PlatformCode) (sourcing.SourceAdapter, error) {
	if !platform.IsValid() {
		return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, platform)
	}
	a, ok := s.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sourcing.ErrSourceNotConfigured, platform)
	}
	return a, nil
}

func (s *CatalogSyncService) acquire(platform sourcing.PlatformCode, syncType domainsync.SyncType) (func(), error) {
	guard, ok := s.guards[guardKey{platform, syncType}]
	if !ok {
		return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, platform)
	}
	select {
	case guard <- struct{}{}:
		return func() { <-guard }, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", shared.ErrSyncInProgress, platform, syncType)
	}
}

func (s *CatalogSyncService) run(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode, stage func(context.Context, sourcing.SourceAdapter) (Outcome, error)) (*RunSummary, error) {
	adapter, err := s.adapter(platform)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(platform, syncType)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := s.tracer.Start(ctx, "sync."+string(syncType),
		trace.WithAttributes(attribute.String("platform", string(platform))))
	defer span.End()

	run := s.recorder.Begin(ctx, syncType, platform)
	started := time.Now()

	out, stageErr := stage(ctx, adapter)

	duration := time.Since(started)
	status := s.recorder.Finish(ctx, run, out, stageErr, duration)
	summary := &RunSummary{
		RunID:    run.ID,
		Type:     syncType,
		Platform: platform,
		Status:   status,
		Outcome:  out,
		Duration: duration,
	}
	if stageErr != nil {
		return summary, fmt.Errorf("%s sync for %s: %w", syncType, platform, stageErr)
	}
	return summary, nil
}

// ---------------------------------------------------------------------------
// Stage implementations
// ---------------------------------------------------------------------------

func (s *CatalogSyncService) syncCategories(ctx context.Context, adapter sourcing.SourceAdapter) (Outcome, error) {
	platform := adapter.PlatformCode()
	records := adapter.FetchCategories(ctx)
	if len(records) == 0 {
		return Outcome{}, nil
	}

	cache := NewLookupCache(platform)
	if err := cache.LoadCategories(ctx, s.categories); err != nil {
		return Outcome{}, err
	}
	slugger := NewSlugger(s.categories.SlugExists)

	out := Reconcile(ctx, s.logger, Spec[sourcing.CategoryRecord, *catalog.Category]{
		Kind:        "category",
		BatchSize:   s.opts.BatchSize,
		FlushEvery:  s.opts.FlushEvery,
		BatchBudget: s.opts.BatchBudget,
		BatchPause:  s.opts.BatchPause,
		ExternalID: func(rec sourcing.CategoryRecord) (string, error) {
			return rec.ExternalID, nil
		},
		Find: cache.Category,
		Create: func(rec sourcing.CategoryRecord) (*catalog.Category, error) {
			parentSlug := ""
			if !rec.IsRoot() {
				if parent, ok := cache.Category(rec.ParentExternalID); ok {
					parentSlug = parent.Slug
				}
			}
			slug, err := slugger.Unique(ctx, rec.Name, parentSlug)
			if err != nil {
				return nil, err
			}
			cat, err := catalog.NewCategory(platform, rec.ExternalID, rec.Name, slug)
			if err != nil {
				return nil, err
			}
			if err := cat.ApplyRecord(rec); err != nil {
				return nil, err
			}
			cache.PutCategory(cat)
			return cat, nil
		},
		Update: func(cat *catalog.Category, rec sourcing.CategoryRecord) error {
			return cat.ApplyRecord(rec)
		},
		Persist: s.categories.SaveBatch,
	}, records)

	linked, err := s.hierarchy.Link(ctx, cache, records)
	if err != nil {
		return out, err
	}
	s.logger.Info("category hierarchy linked",
		zap.String("platform", string(platform)), zap.Int64("linked", linked))
	return out, nil
}

func (s *CatalogSyncService) syncManufacturers(ctx context.Context, adapter sourcing.SourceAdapter) (Outcome, error) {
	platform := adapter.PlatformCode()
	records := adapter.FetchManufacturers(ctx)
	if len(records) == 0 {
		return Outcome{}, nil
	}

	cache := NewLookupCache(platform)
	if err := cache.LoadManufacturers(ctx, s.manufacturers); err != nil {
		return Outcome{}, err
	}

	out := Reconcile(ctx, s.logger, Spec[sourcing.ManufacturerRecord, *catalog.Manufacturer]{
		Kind:        "manufacturer",
		BatchSize:   s.opts.BatchSize,
		FlushEvery:  s.opts.FlushEvery,
		BatchBudget: s.opts.BatchBudget,
		BatchPause:  s.opts.BatchPause,
		ExternalID: func(rec sourcing.ManufacturerRecord) (string, error) {
			return rec.ExternalID, nil
		},
		Find: cache.Manufacturer,
		Create: func(rec sourcing.ManufacturerRecord) (*catalog.Manufacturer, error) {
			m, err := catalog.NewManufacturer(platform, rec.ExternalID, rec.Name)
			if err != nil {
				return nil, err
			}
			if err := m.ApplyRecord(rec); err != nil {
				return nil, err
			}
			cache.PutManufacturer(m)
			return m, nil
		},
		Update: func(m *catalog.Manufacturer, rec sourcing.ManufacturerRecord) error {
			return m.ApplyRecord(rec)
		},
		Persist: s.manufacturers.SaveBatch,
	}, records)
	return out, nil
}

// syncParameters reconciles parameters and options. A non-empty
// onlyCategory restricts the pass to that one category.
func (s *CatalogSyncService) syncParameters(ctx context.Context, adapter sourcing.SourceAdapter, onlyCategory string) (Outcome, error) {
	platform := adapter.PlatformCode()
	cats, err := s.stageCategories(ctx, platform, onlyCategory)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	for i := range cats {
		cat := &cats[i]
		records := adapter.FetchParameters(ctx, cat.ExternalID)
		if len(records) == 0 {
			continue
		}

		cache := NewLookupCache(platform)
		if err := cache.LoadParameters(ctx, s.parameters, s.options, cat.ID); err != nil {
			return out, err
		}

		out.Merge(Reconcile(ctx, s.logger, Spec[sourcing.ParameterRecord, *catalog.Parameter]{
			Kind:        "parameter",
			BatchSize:   s.opts.BatchSize,
			FlushEvery:  s.opts.FlushEvery,
			BatchBudget: s.opts.BatchBudget,
			BatchPause:  s.opts.BatchPause,
			ExternalID: func(rec sourcing.ParameterRecord) (string, error) {
				return rec.ExternalID, nil
			},
			Find: func(externalID string) (*catalog.Parameter, bool) {
				return cache.Parameter(cat.ID, externalID)
			},
			Create: func(rec sourcing.ParameterRecord) (*catalog.Parameter, error) {
				p, err := catalog.NewParameter(platform, cat.ID, rec.ExternalID, rec.Name)
				if err != nil {
					return nil, err
				}
				if err := p.ApplyRecord(rec); err != nil {
					return nil, err
				}
				cache.PutParameter(p)
				return p, nil
			},
			Update: func(p *catalog.Parameter, rec sourcing.ParameterRecord) error {
				return p.ApplyRecord(rec)
			},
			Persist: s.parameters.SaveBatch,
		}, records))

		// options per parameter, smaller batches since option names run long
		for _, rec := range records {
			param, ok := cache.Parameter(cat.ID, rec.ExternalID)
			if !ok || len(rec.Options) == 0 {
				continue
			}
			out.Merge(Reconcile(ctx, s.logger, Spec[sourcing.OptionRecord, *catalog.ParameterOption]{
				Kind:        "option",
				BatchSize:   s.opts.SmallBatchSize,
				FlushEvery:  s.opts.FlushEvery,
				BatchBudget: s.opts.BatchBudget,
				BatchPause:  -1,
				ExternalID: func(rec sourcing.OptionRecord) (string, error) {
					return rec.ExternalID, nil
				},
				Find: func(externalID string) (*catalog.ParameterOption, bool) {
					return cache.Option(param.ID, externalID)
				},
				Create: func(rec sourcing.OptionRecord) (*catalog.ParameterOption, error) {
					o, err := catalog.NewParameterOption(platform, param.ID, rec.ExternalID, rec.Name)
					if err != nil {
						return nil, err
					}
					if err := o.ApplyRecord(rec); err != nil {
						return nil, err
					}
					cache.PutOption(o)
					return o, nil
				},
				Update: func(o *catalog.ParameterOption, rec sourcing.OptionRecord) error {
					return o.ApplyRecord(rec)
				},
				Persist: s.options.SaveBatch,
			}, rec.Options))
		}
	}
	return out, nil
}

// syncProducts reconciles products category by category, so one category's
// failure cannot roll back others already committed
func (s *CatalogSyncService) syncProducts(ctx context.Context, adapter sourcing.SourceAdapter, onlyCategory string) (Outcome, error) {
	platform := adapter.PlatformCode()
	cats, err := s.stageCategories(ctx, platform, onlyCategory)
	if err != nil {
		return Outcome{}, err
	}

	cache := NewLookupCache(platform)
	if err := cache.LoadProducts(ctx, s.products); err != nil {
		return Outcome{}, err
	}
	if err := cache.LoadManufacturers(ctx, s.manufacturers); err != nil {
		return Outcome{}, err
	}
	slugger := NewSlugger(s.products.SlugExists)

	var out Outcome
	for i := range cats {
		cat := &cats[i]
		records := adapter.FetchProducts(ctx, cat.ExternalID)
		if len(records) == 0 {
			continue
		}
		out.Merge(s.reconcileProducts(ctx, cache, slugger, cat, records))
	}
	return out, nil
}

func (s *CatalogSyncService) resyncProduct(ctx context.Context, adapter sourcing.SourceAdapter, productExternalID string) (Outcome, error) {
	platform := adapter.PlatformCode()
	product, err := s.products.FindByExternalID(ctx, platform, productExternalID)
	if err != nil {
		return Outcome{}, fmt.Errorf("resync product %s: %w", productExternalID, err)
	}
	cat, err := s.categories.FindByID(ctx, product.CategoryID)
	if err != nil {
		return Outcome{}, fmt.Errorf("resync product %s: %w", productExternalID, err)
	}

	var target []sourcing.ProductRecord
	for _, rec := range adapter.FetchProducts(ctx, cat.ExternalID) {
		if rec.ExternalID == productExternalID {
			target = append(target, rec)
			break
		}
	}
	if len(target) == 0 {
		s.logger.Warn("product absent from source feed, nothing to resync",
			zap.String("platform", string(platform)),
			zap.String("external_id", productExternalID))
		return Outcome{}, nil
	}

	cache := NewLookupCache(platform)
	if err := cache.LoadProducts(ctx, s.products); err != nil {
		return Outcome{}, err
	}
	if err := cache.LoadManufacturers(ctx, s.manufacturers); err != nil {
		return Outcome{}, err
	}
	out := s.reconcileProducts(ctx, cache, NewSlugger(s.products.SlugExists), cat, target)

	for _, doc := range adapter.FetchDocuments(ctx, productExternalID) {
		existing, err := s.documents.FindByExternalID(ctx, platform, doc.ExternalID)
		switch {
		case err == nil:
			if err := existing.ApplyRecord(doc); err != nil {
				out.Errors++
				continue
			}
			if err := s.documents.Save(ctx, existing); err != nil {
				out.Errors++
				continue
			}
			out.Processed++
			out.Updated++
		case errors.Is(err, shared.ErrNotFound):
			created, err := catalog.NewProductDocument(platform, product.ID, doc.ExternalID, doc.Name, doc.URL)
			if err != nil {
				out.Errors++
				continue
			}
			if err := created.ApplyRecord(doc); err != nil {
				out.Errors++
				continue
			}
			if err := s.documents.Save(ctx, created); err != nil {
				out.Errors++
				continue
			}
			out.Processed++
			out.Created++
		default:
			s.logger.Warn("document lookup failed during product resync",
				zap.String("document_external_id", doc.ExternalID), zap.Error(err))
			out.Errors++
		}
	}
	return out, nil
}

// reconcileProducts runs the engine over one category's product feed and
// replaces each persisted product's parameter-association set
func (s *CatalogSyncService) reconcileProducts(ctx context.Context, cache *LookupCache, slugger *Slugger, cat *catalog.Category, records []sourcing.ProductRecord) Outcome {
	platform := cache.Platform()
	refsByExternal := make(map[string][]sourcing.ParameterValueRef, len(records))
	for _, rec := range records {
		refsByExternal[rec.ExternalID] = rec.Parameters
	}

	var unmappedTotal int64
	out := Reconcile(ctx, s.logger, Spec[sourcing.ProductRecord, *catalog.Product]{
		Kind:        "product",
		BatchSize:   s.opts.BatchSize,
		FlushEvery:  s.opts.FlushEvery,
		BatchBudget: s.opts.BatchBudget,
		BatchPause:  s.opts.BatchPause,
		ExternalID: func(rec sourcing.ProductRecord) (string, error) {
			return rec.ExternalID, nil
		},
		Find: cache.Product,
		Create: func(rec sourcing.ProductRecord) (*catalog.Product, error) {
			slug, err := slugger.Unique(ctx, rec.Name, "")
			if err != nil {
				return nil, err
			}
			p, err := catalog.NewProduct(platform, cat.ID, rec.ExternalID, rec.Name, slug)
			if err != nil {
				return nil, err
			}
			if err := p.ApplyRecord(rec); err != nil {
				return nil, err
			}
			s.linkManufacturer(cache, p, rec)
			cache.PutProduct(p)
			return p, nil
		},
		Update: func(p *catalog.Product, rec sourcing.ProductRecord) error {
			if err := p.ApplyRecord(rec); err != nil {
				return err
			}
			p.CategoryID = cat.ID
			s.linkManufacturer(cache, p, rec)
			return nil
		},
		Persist: func(ctx context.Context, products []*catalog.Product) error {
			if err := s.products.SaveBatch(ctx, products); err != nil {
				return err
			}
			// associations only after the category assignment is committed
			for _, p := range products {
				assocs, unmapped, err := s.paramGraph.Resolve(ctx, platform, p.ID, p.CategoryID, refsByExternal[p.ExternalID])
				if err != nil {
					return err
				}
				unmappedTotal += unmapped
				if err := s.products.ReplaceParameters(ctx, p.ID, assocs); err != nil {
					return err
				}
			}
			return nil
		},
	}, records)

	if unmappedTotal > 0 {
		s.logger.Warn("product parameter values left unmapped",
			zap.String("platform", string(platform)),
			zap.String("category", cat.ExternalID),
			zap.Int64("unmapped", unmappedTotal))
	}
	return out
}

func (s *CatalogSyncService) linkManufacturer(cache *LookupCache, p *catalog.Product, rec sourcing.ProductRecord) {
	if rec.ManufacturerExternalID == "" {
		p.ClearManufacturer()
		return
	}
	m, ok := cache.Manufacturer(rec.ManufacturerExternalID)
	if !ok {
		s.logger.Warn("manufacturer not found, product linked without it",
			zap.String("product_external_id", rec.ExternalID),
			zap.String("manufacturer_external_id", rec.ManufacturerExternalID))
		p.ClearManufacturer()
		return
	}
	p.SetManufacturer(m.ID)
}

func (s *CatalogSyncService) syncDocuments(ctx context.Context, adapter sourcing.SourceAdapter) (Outcome, error) {
	platform := adapter.PlatformCode()
	records := adapter.FetchDocuments(ctx, "")
	if len(records) == 0 {
		return Outcome{}, nil
	}

	cache := NewLookupCache(platform)
	if err := cache.LoadProducts(ctx, s.products); err != nil {
		return Outcome{}, err
	}
	if err := cache.LoadDocuments(ctx, s.documents); err != nil {
		return Outcome{}, err
	}

	out := Reconcile(ctx, s.logger, Spec[sourcing.DocumentRecord, *catalog.ProductDocument]{
		Kind:        "document",
		BatchSize:   s.opts.SmallBatchSize,
		FlushEvery:  s.opts.FlushEvery,
		BatchBudget: s.opts.BatchBudget,
		BatchPause:  s.opts.BatchPause,
		ExternalID: func(rec sourcing.DocumentRecord) (string, error) {
			return rec.ExternalID, nil
		},
		Find: cache.Document,
		Create: func(rec sourcing.DocumentRecord) (*catalog.ProductDocument, error) {
			product, ok := cache.Product(rec.ProductExternalID)
			if !ok {
				return nil, fmt.Errorf("document %s references unknown product %s", rec.ExternalID, rec.ProductExternalID)
			}
			d, err := catalog.NewProductDocument(platform, product.ID, rec.ExternalID, rec.Name, rec.URL)
			if err != nil {
				return nil, err
			}
			if err := d.ApplyRecord(rec); err != nil {
				return nil, err
			}
			cache.PutDocument(d)
			return d, nil
		},
		Update: func(d *catalog.ProductDocument, rec sourcing.DocumentRecord) error {
			return d.ApplyRecord(rec)
		},
		Persist: s.documents.SaveBatch,
	}, records)
	return out, nil
}

// stageCategories lists the categories a per-category stage iterates
func (s *CatalogSyncService) stageCategories(ctx context.Context, platform sourcing.PlatformCode, onlyCategory string) ([]catalog.Category, error) {
	if onlyCategory != "" {
		cat, err := s.categories.FindByExternalID(ctx, platform, onlyCategory)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", onlyCategory, err)
		}
		return []catalog.Category{*cat}, nil
	}
	cats, err := s.categories.FindAllByPlatform(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
