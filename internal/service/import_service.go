package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"lexicon/internal/apperrors"
	"lexicon/internal/logger"
	"lexicon/internal/metrics"
	"lexicon/internal/models"
)

// DefaultBatchSize is used when Import is given a non-positive batch size
const DefaultBatchSize = 1000

// WordWriter is the storage surface the importer needs
type WordWriter interface {
	CountWords(ctx context.Context) (int, error)
	PurgeWords(ctx context.Context) error
	InsertWords(ctx context.Context, pairs []models.WordPair) error
}

// Invalidator drops derived data after the words relation changes
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Confirmer decides whether existing rows may be purged. existing is the
// current row count.
type Confirmer func(ctx context.Context, existing int) (bool, error)

// ProgressFunc receives the cumulative imported count after each commit
type ProgressFunc func(imported int)

// ImportResult summarizes one run
type ImportResult struct {
	Imported int
	Skipped  int
	Batches  int
	Existing int
	Purged   bool
	Declined bool
	Duration time.Duration
}

// ImportService loads a record stream into the words relation in
// fixed-size transactional batches.
type ImportService struct {
	words       WordWriter
	confirm     Confirmer
	progress    ProgressFunc
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewImportService creates an importer. A nil confirm declines every purge.
func NewImportService(words WordWriter, confirm Confirmer) *ImportService {
	return &ImportService{
		words:   words,
		confirm: confirm,
		logger:  logger.WithComponent("importer"),
	}
}

// WithProgress sets the per-batch progress callback
func (s *ImportService) WithProgress(fn ProgressFunc) *ImportService {
	s.progress = fn
	return s
}

// WithInvalidator registers a cache to clear after purges and imports
func (s *ImportService) WithInvalidator(inv Invalidator) *ImportService {
	s.invalidator = inv
	return s
}

// WithMetrics records row and batch counters
func (s *ImportService) WithMetrics(m *metrics.Metrics) *ImportService {
	s.metrics = m
	return s
}

// Import reads source to exhaustion, committing every batchSize valid pairs
// as one atomic insert and the remainder once at the end. When the store
// already holds rows the Confirmer decides between purging them first and
// returning without importing anything.
//
// A failed commit or a cancelled ctx stops the run; batches committed before
// that stay in the store and are reflected in the returned result.
func (s *ImportService) Import(ctx context.Context, source RecordSource, batchSize int) (ImportResult, error) {
	start := time.Now()
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	result, err := s.run(ctx, source, batchSize)
	result.Duration = time.Since(start)
	if err == nil && !result.Declined {
		s.logger.Info("import completed",
			"imported", result.Imported,
			"skipped", result.Skipped,
			"batches", result.Batches,
			"duration", result.Duration,
		)
	}
	return result, err
}

func (s *ImportService) run(ctx context.Context, source RecordSource, batchSize int) (ImportResult, error) {
	var result ImportResult

	existing, err := s.words.CountWords(ctx)
	if err != nil {
		return result, err
	}
	result.Existing = existing

	if existing > 0 {
		ok, err := s.confirmPurge(ctx, existing)
		if err != nil {
			return result, err
		}
		if !ok {
			result.Declined = true
			s.logger.Info("import declined, existing rows kept", "existing", existing)
			return result, nil
		}

		if err := s.words.PurgeWords(ctx); err != nil {
			return result, err
		}
		result.Purged = true
		s.invalidate(ctx)
		s.logger.Info("existing rows purged", "count", existing)
	}

	batch := make([]models.WordPair, 0, batchSize)
	for {
		if err := ctx.Err(); err != nil {
			s.finish(ctx, &result)
			return result, apperrors.Wrap(apperrors.ErrStorage, err, "import cancelled after %d rows", result.Imported)
		}

		rec, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, apperrors.ErrInvalidInput) {
			s.skip(&result, err)
			continue
		}
		if err != nil {
			s.finish(ctx, &result)
			return result, err
		}

		pair, ok := NormalizeRecord(rec)
		if !ok {
			s.skip(&result, nil)
			continue
		}

		batch = append(batch, pair)
		if len(batch) == batchSize {
			if err := s.flush(ctx, batch, &result); err != nil {
				s.finish(ctx, &result)
				return result, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.flush(ctx, batch, &result); err != nil {
			s.finish(ctx, &result)
			return result, err
		}
	}

	s.finish(ctx, &result)
	return result, nil
}

func (s *ImportService) confirmPurge(ctx context.Context, existing int) (bool, error) {
	if s.confirm == nil {
		return false, nil
	}
	return s.confirm(ctx, existing)
}

func (s *ImportService) flush(ctx context.Context, batch []models.WordPair, result *ImportResult) error {
	if err := s.words.InsertWords(ctx, batch); err != nil {
		if s.metrics != nil {
			s.metrics.BatchCommitsTotal.WithLabelValues("failed").Inc()
		}
		s.logger.Error("batch commit failed", "batch", result.Batches+1, "size", len(batch), "error", err)
		return err
	}

	result.Imported += len(batch)
	result.Batches++
	if s.metrics != nil {
		s.metrics.BatchCommitsTotal.WithLabelValues("ok").Inc()
		s.metrics.RowsImportedTotal.Add(float64(len(batch)))
	}
	s.logger.Debug("batch committed", "batch", result.Batches, "total", result.Imported)

	if s.progress != nil {
		s.progress(result.Imported)
	}
	return nil
}

func (s *ImportService) skip(result *ImportResult, cause error) {
	result.Skipped++
	if s.metrics != nil {
		s.metrics.RowsSkippedTotal.Inc()
	}
	if cause != nil {
		s.logger.Warn("malformed record skipped", "error", cause)
	}
}

// finish clears the cache once any rows have been committed
func (s *ImportService) finish(ctx context.Context, result *ImportResult) {
	if result.Batches > 0 {
		s.invalidate(context.WithoutCancel(ctx))
	}
}

func (s *ImportService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err)
	}
}
