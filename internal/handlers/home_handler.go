package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"lexicon/internal/logger"
	"lexicon/internal/models"
	"lexicon/internal/security"
	"lexicon/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// LoadTemplates parses the embedded page templates
func LoadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
}

// HomeHandler renders the search page
type HomeHandler struct {
	lookup    *service.LookupService
	browse    *service.BrowseService
	templates *template.Template
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(lookup *service.LookupService, browse *service.BrowseService, templates *template.Template) *HomeHandler {
	return &HomeHandler{lookup: lookup, browse: browse, templates: templates}
}

type homePage struct {
	Query  string
	Result *models.LookupResult
	Recent []string
	Stats  models.Stats
}

// Home shows the search form and, when ?word= is present, the lookup result
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := homePage{Query: r.URL.Query().Get("word")}

	if page.Query != "" {
		result, err := h.lookup.Lookup(ctx, page.Query, security.ClientIP(r))
		if err != nil {
			respondWithAppError(w, r, "home lookup failed", err)
			return
		}
		page.Result = &result
	}

	// Side panels are best effort
	var err error
	if page.Recent, err = h.browse.Recent(ctx); err != nil {
		logger.FromContext(ctx).Warn("recent searches unavailable", "error", err)
	}
	if page.Stats, err = h.browse.Stats(ctx); err != nil {
		logger.FromContext(ctx).Warn("stats unavailable", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "home.tmpl", page); err != nil {
		logger.FromContext(ctx).Error("failed to render home page", "error", err)
	}
}
