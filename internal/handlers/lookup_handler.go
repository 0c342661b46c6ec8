package handlers

import (
	"net/http"

	"lexicon/internal/models"
	"lexicon/internal/security"
	"lexicon/internal/service"
)

// LookupHandler serves the JSON API
type LookupHandler struct {
	lookup *service.LookupService
	browse *service.BrowseService
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(lookup *service.LookupService, browse *service.BrowseService) *LookupHandler {
	return &LookupHandler{lookup: lookup, browse: browse}
}

// Lookup answers GET /api/v1/{word}/. A missing word is still a 200 with a
// null definition.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")

	result, err := h.lookup.Lookup(r.Context(), word, security.ClientIP(r))
	if err != nil {
		respondWithAppError(w, r, "lookup failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Random returns an arbitrary entry
func (h *LookupHandler) Random(w http.ResponseWriter, r *http.Request) {
	entry, err := h.browse.Random(r.Context())
	if err != nil {
		respondWithAppError(w, r, "random word failed", err)
		return
	}

	respondJSON(w, http.StatusOK, models.Found(*entry))
}

type recentResponse struct {
	Words []string `json:"words"`
}

// Recent lists recently searched words, newest first
func (h *LookupHandler) Recent(w http.ResponseWriter, r *http.Request) {
	words, err := h.browse.Recent(r.Context())
	if err != nil {
		respondWithAppError(w, r, "recent searches failed", err)
		return
	}

	respondJSON(w, http.StatusOK, recentResponse{Words: words})
}

// Stats returns word and search totals
func (h *LookupHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.browse.Stats(r.Context())
	if err != nil {
		respondWithAppError(w, r, "stats failed", err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
