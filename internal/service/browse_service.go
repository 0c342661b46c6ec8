package service

import (
	"context"
	"net/http"

	"lexicon/internal/apperrors"
	"lexicon/internal/models"
)

// RecentLimit caps the recent searches list
const RecentLimit = 20

// RandomWordSource picks an arbitrary entry, nil when the store is empty
type RandomWordSource interface {
	RandomWord(ctx context.Context) (*models.WordEntry, error)
}

// SearchReader reads back recorded searches
type SearchReader interface {
	RecentWords(ctx context.Context, limit int) ([]string, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// BrowseService serves the random, recent and stats views
type BrowseService struct {
	words    RandomWordSource
	searches SearchReader
}

// NewBrowseService creates a browse service
func NewBrowseService(words RandomWordSource, searches SearchReader) *BrowseService {
	return &BrowseService{words: words, searches: searches}
}

// Random returns a random entry. An empty store is apperrors.ErrNotFound.
func (s *BrowseService) Random(ctx context.Context) (*models.WordEntry, error) {
	entry, err := s.words.RandomWord(ctx)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperrors.New(apperrors.ErrNotFound, http.StatusNotFound, "No words in dictionary")
	}
	return entry, nil
}

// Recent returns the most recently searched distinct words, newest first
func (s *BrowseService) Recent(ctx context.Context) ([]string, error) {
	return s.searches.RecentWords(ctx, RecentLimit)
}

// Stats returns totals for words and searches
func (s *BrowseService) Stats(ctx context.Context) (models.Stats, error) {
	return s.searches.Stats(ctx)
}
