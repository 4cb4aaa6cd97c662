package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Engine tuning defaults. Documents and options use the smaller batch size
// because their per-record payloads are larger.
const (
	DefaultBatchSize   = 30
	SmallBatchSize     = 20
	DefaultFlushEvery  = 15
	DefaultBatchBudget = 5 * time.Minute
	DefaultBatchPause  = 100 * time.Millisecond
)

// Outcome aggregates the per-record results of a reconciliation pass.
// Processed counts only records that reached a committed flush; records
// that failed mapping or whose flush failed are counted in Errors.
type Outcome struct {
	Processed int64 `json:"processed"`
	Created   int64 `json:"created"`
	Updated   int64 `json:"updated"`
	Errors    int64 `json:"errors"`
}

// Merge folds another outcome into this one
func (o *Outcome) Merge(other Outcome) {
	o.Processed += other.Processed
	o.Created += other.Created
	o.Updated += other.Updated
	o.Errors += other.Errors
}

// IsZero reports whether nothing at all happened
func (o Outcome) IsZero() bool {
	return o.Processed == 0 && o.Created == 0 && o.Updated == 0 && o.Errors == 0
}

// Spec parameterizes one reconciliation pass. The caller supplies the
// already-fetched candidate list; the spec supplies only the per-record
// hooks, so all vendor pipelines share this single control loop.
//
// Create and Find are expected to keep the run's lookup cache consistent:
// Create inserts the new entity into the cache so later records in the same
// run resolve forward references without a query.
type Spec[R any, E any] struct {
	// Kind names the entity kind for log fields
	Kind string

	// BatchSize is the partition size (DefaultBatchSize when zero)
	BatchSize int

	// FlushEvery bounds the pending-write window (DefaultFlushEvery when zero)
	FlushEvery int

	// BatchBudget is the soft wall-clock limit per batch (DefaultBatchBudget
	// when zero). Exceeding it skips the batch remainder; the skipped
	// records are picked up by the next run.
	BatchBudget time.Duration

	// BatchPause is the inter-batch pause (DefaultBatchPause when zero,
	// negative disables)
	BatchPause time.Duration

	// ExternalID extracts the record's source identifier
	ExternalID func(record R) (string, error)

	// Find looks the external id up in the run's cache
	Find func(externalID string) (E, bool)

	// Create maps a record with no existing entity to a new entity
	Create func(record R) (E, error)

	// Update applies the record onto an existing entity in place
	Update func(entity E, record R) error

	// Persist flushes a window of pending entities to storage
	Persist func(ctx context.Context, entities []E) error
}

func (s *Spec[R, E]) applyDefaults() {
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}
	if s.FlushEvery <= 0 {
		s.FlushEvery = DefaultFlushEvery
	}
	if s.BatchBudget <= 0 {
		s.BatchBudget = DefaultBatchBudget
	}
	if s.BatchPause == 0 {
		s.BatchPause = DefaultBatchPause
	}
}

// Reconcile upserts every candidate record through the spec's hooks.
// Per-record failures are counted and skipped, never aborting the pass.
// An empty candidate list returns a zero outcome without touching storage.
func Reconcile[R any, E any](ctx context.Context, logger *zap.Logger, spec Spec[R, E], records []R) Outcome {
	var out Outcome
	if len(records) == 0 {
		return out
	}
	spec.applyDefaults()
	log := logger.With(zap.String("kind", spec.Kind), zap.Int("candidates", len(records)))

	for start := 0; start < len(records); start += spec.BatchSize {
		end := min(start+spec.BatchSize, len(records))
		out.Merge(reconcileBatch(ctx, log, &spec, records[start:end]))

		if end < len(records) && spec.BatchPause > 0 {
			select {
			case <-ctx.Done():
				log.Warn("reconciliation interrupted between batches",
					zap.Int("remaining", len(records)-end))
				return out
			case <-time.After(spec.BatchPause):
			}
		}
	}

	log.Info("reconciliation pass finished",
		zap.Int64("processed", out.Processed),
		zap.Int64("created", out.Created),
		zap.Int64("updated", out.Updated),
		zap.Int64("errors", out.Errors))
	return out
}

func reconcileBatch[R any, E any](ctx context.Context, log *zap.Logger, spec *Spec[R, E], batch []R) Outcome {
	var out Outcome
	var pending []E
	var pendingCreated, pendingUpdated int64
	deadline := time.Now().Add(spec.BatchBudget)

	// A flush commits the window or fails it as a whole. Counts are folded
	// into the outcome only after the flush succeeds, so Processed never
	// includes records that were lost with a failed window.
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := spec.Persist(ctx, pending); err != nil {
			log.Error("flush failed, window counted as errors",
				zap.Int("window", len(pending)), zap.Error(err))
			out.Errors += int64(len(pending))
		} else {
			out.Processed += int64(len(pending))
			out.Created += pendingCreated
			out.Updated += pendingUpdated
		}
		pending = nil
		pendingCreated, pendingUpdated = 0, 0
	}

	for i, rec := range batch {
		if time.Now().After(deadline) {
			log.Warn("batch budget exhausted, deferring remainder to next run",
				zap.Duration("budget", spec.BatchBudget),
				zap.Int("deferred", len(batch)-i))
			break
		}

		externalID, err := spec.ExternalID(rec)
		if err != nil || externalID == "" {
			log.Warn("record has no usable external id", zap.Error(err))
			out.Errors++
			continue
		}

		if entity, ok := spec.Find(externalID); ok {
			if err := spec.Update(entity, rec); err != nil {
				log.Warn("record update failed",
					zap.String("external_id", externalID), zap.Error(err))
				out.Errors++
				continue
			}
			pending = append(pending, entity)
			pendingUpdated++
		} else {
			entity, err := spec.Create(rec)
			if err != nil {
				log.Warn("record create failed",
					zap.String("external_id", externalID), zap.Error(err))
				out.Errors++
				continue
			}
			pending = append(pending, entity)
			pendingCreated++
		}

		if len(pending) >= spec.FlushEvery {
			flush()
		}
	}

	flush()
	return out
}
