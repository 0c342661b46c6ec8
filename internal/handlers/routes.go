package handlers

import (
	"net/http"
)

// Router bundles everything NewRouter wires
type Router struct {
	Lookup         *LookupHandler
	Home           *HomeHandler
	Health         *HealthHandler
	Startup        *Startup
	Middleware     *Middleware
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter registers all routes and wraps them with the request
// middleware stack.
func NewRouter(rt Router) http.Handler {
	mw := rt.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", rt.Home.Home)

	// The exact browse paths outrank {word}, so the words random, recent
	// and stats are looked up with the trailing slash form only.
	mux.HandleFunc("GET /api/v1/random", mw.RateLimit(rt.Lookup.Random))
	mux.HandleFunc("GET /api/v1/recent", mw.RateLimit(rt.Lookup.Recent))
	mux.HandleFunc("GET /api/v1/stats", mw.RateLimit(rt.Lookup.Stats))
	mux.HandleFunc("GET /api/v1/{word}", mw.RateLimit(rt.Lookup.Lookup))
	mux.HandleFunc("GET /api/v1/{word}/{$}", mw.RateLimit(rt.Lookup.Lookup))

	mux.HandleFunc("GET /healthz", rt.Health.Health)
	if rt.Startup != nil {
		mux.HandleFunc("GET /readyz", rt.Startup.Ready)
	}
	if rt.MetricsHandler != nil {
		mux.Handle("GET "+rt.MetricsPath, rt.MetricsHandler)
	}

	return Chain(mux, RequestID, Logging, mw.Metrics)
}
