package sourcing

import "context"

// SourceAdapter defines the port interface for external catalog sources.
// The interface is defined in the domain and implemented by infrastructure
// adapters (Ports & Adapters).
//
// Every method applies the adapter's timeout and retry policy internally and
// degrades to an empty slice when the source cannot be reached: callers must
// treat an empty result as "nothing to reconcile this run", never as
// confirmation of an empty remote catalog.
type SourceAdapter interface {
	// PlatformCode returns the platform this adapter talks to
	PlatformCode() PlatformCode

	// FetchCategories fetches the full flat category list
	FetchCategories(ctx context.Context) []CategoryRecord

	// FetchManufacturers fetches the full manufacturer list
	FetchManufacturers(ctx context.Context) []ManufacturerRecord

	// FetchParameters fetches the parameter definitions (with their options)
	// for one category
	FetchParameters(ctx context.Context, categoryExternalID string) []ParameterRecord

	// FetchProducts fetches the products of one category
	FetchProducts(ctx context.Context, categoryExternalID string) []ProductRecord

	// FetchDocuments fetches product documents. An empty productExternalID
	// requests the full document list.
	FetchDocuments(ctx context.Context, productExternalID string) []DocumentRecord
}
