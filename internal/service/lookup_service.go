package service

import (
	"context"
	"log/slog"
	"time"

	"lexicon/internal/analytics"
	"lexicon/internal/cache"
	"lexicon/internal/logger"
	"lexicon/internal/metrics"
	"lexicon/internal/models"
)

// WordFinder resolves a word to its lowest-id entry, nil when absent
type WordFinder interface {
	FindByWord(ctx context.Context, word string) (*models.WordEntry, error)
}

// SearchRecorder persists a successful lookup
type SearchRecorder interface {
	RecordSearch(ctx context.Context, wordID int64, ip string) error
}

// LookupService answers exact-match word queries. It keeps no state of its
// own and is safe for concurrent use.
type LookupService struct {
	words     WordFinder
	recorder  SearchRecorder
	cache     *cache.LookupCache
	publisher analytics.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewLookupService creates a lookup service over words
func NewLookupService(words WordFinder) *LookupService {
	return &LookupService{
		words:     words,
		publisher: analytics.NopPublisher{},
		logger:    logger.WithComponent("lookup"),
	}
}

// WithRecorder enables search stats and history for found words
func (s *LookupService) WithRecorder(r SearchRecorder) *LookupService {
	s.recorder = r
	return s
}

// WithCache puts a read-through cache in front of the store
func (s *LookupService) WithCache(c *cache.LookupCache) *LookupService {
	s.cache = c
	return s
}

// WithPublisher streams a LookupEvent per answered query
func (s *LookupService) WithPublisher(p analytics.Publisher) *LookupService {
	s.publisher = p
	return s
}

// WithMetrics records lookup counters and latency
func (s *LookupService) WithMetrics(m *metrics.Metrics) *LookupService {
	s.metrics = m
	return s
}

// Lookup returns the definition of the lowest-id entry whose word equals
// word byte for byte. A miss is a result with a nil definition, not an
// error; only store failures are returned as errors. clientIP is recorded
// with the search history.
func (s *LookupService) Lookup(ctx context.Context, word, clientIP string) (models.LookupResult, error) {
	start := time.Now()

	entry, cached, err := s.find(ctx, word)
	if err != nil {
		s.observe(metrics.ResultError, cached, start)
		return models.LookupResult{}, err
	}

	result := models.Missing(word)
	if entry != nil {
		result = models.Found(*entry)
		s.record(ctx, entry.ID, clientIP)
	}

	if result.IsFound() {
		s.observe(metrics.ResultFound, cached, start)
	} else {
		s.observe(metrics.ResultNotFound, cached, start)
	}

	event := analytics.LookupEvent{
		Word:     word,
		Found:    result.IsFound(),
		Cached:   cached,
		ClientIP: clientIP,
		At:       start.UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("lookup event not published", "word", word, "error", err)
	}

	return result, nil
}

func (s *LookupService) find(ctx context.Context, word string) (*models.WordEntry, bool, error) {
	if word == "" {
		return nil, false, nil
	}
	if s.cache == nil {
		entry, err := s.words.FindByWord(ctx, word)
		return entry, false, err
	}
	return s.cache.GetOrCompute(ctx, word, func(ctx context.Context) (*models.WordEntry, error) {
		return s.words.FindByWord(ctx, word)
	})
}

// record never fails the lookup; errors are only logged
func (s *LookupService) record(ctx context.Context, wordID int64, clientIP string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSearch(ctx, wordID, clientIP); err != nil {
		logger.FromContext(ctx).Warn("failed to record search", "word_id", wordID, "error", err)
	}
}

func (s *LookupService) observe(result string, cached bool, start time.Time) {
	if s.metrics == nil {
		return
	}
	status := "miss"
	if cached {
		status = "hit"
	}
	if s.cache == nil {
		status = "disabled"
	}
	s.metrics.LookupsTotal.WithLabelValues(result).Inc()
	s.metrics.LookupLatency.WithLabelValues(status).Observe(time.Since(start).Seconds())
}
