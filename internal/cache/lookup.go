package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"lexicon/internal/models"
)

const keyPrefix = "lookup:"

// computeTimeout bounds a shared computation, which outlives any single
// caller's context
const computeTimeout = 10 * time.Second

// cachedLookup is the stored form of one lookup. A nil Entry records a
// miss so absent words do not reach the database either.
type cachedLookup struct {
	Entry *models.WordEntry `json:"entry"`
}

// LookupCache memoizes lookups by exact word, including misses. Callers
// must Invalidate after any write to the words relation.
type LookupCache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewLookupCache wraps store with a per-entry ttl
func NewLookupCache(store Store, ttl time.Duration) *LookupCache {
	return &LookupCache{
		store:  store,
		ttl:    ttl,
		logger: slog.Default().With("component", "lookup-cache"),
	}
}

// Get returns the cached entry for word. ok is false when nothing is
// cached; a cached miss is (nil, true). Store errors count as misses.
func (c *LookupCache) Get(ctx context.Context, word string) (entry *models.WordEntry, ok bool) {
	key := buildKey(word)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	var cached cachedLookup
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}

	return cached.Entry, true
}

// Set stores entry, which may be nil; failures are logged only
func (c *LookupCache) Set(ctx context.Context, word string, entry *models.WordEntry) {
	key := buildKey(word)
	data, err := json.Marshal(cachedLookup{Entry: entry})
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached entry for word or computes, stores and
// returns it. Concurrent callers for the same word share one computation,
// which runs detached from any caller's cancellation; each caller stops
// waiting when its own ctx is done. The bool reports whether the result
// came from the cache.
func (c *LookupCache) GetOrCompute(
	ctx context.Context,
	word string,
	compute func(ctx context.Context) (*models.WordEntry, error),
) (*models.WordEntry, bool, error) {
	if entry, ok := c.Get(ctx, word); ok {
		return entry, true, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(buildKey(word), func() (any, error) {
		computeCtx, cancel := context.WithTimeout(shared, computeTimeout)
		defer cancel()

		entry, err := compute(computeCtx)
		if err != nil {
			return nil, err
		}
		c.Set(computeCtx, word, entry)
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*models.WordEntry), false, nil
	}
}

// Invalidate drops every cached lookup
func (c *LookupCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Ping checks the backing store
func (c *LookupCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// buildKey hashes the raw word so keys stay exact for any byte content,
// including whitespace and case.
func buildKey(word string) string {
	sum := sha256.Sum256([]byte(word))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}
