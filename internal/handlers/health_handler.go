package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

type componentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency"`
}

type healthReport struct {
	Status     string                     `json:"status"`
	Components map[string]componentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// HealthHandler runs the registered checks on every request
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a handler with no checks
func NewHealthHandler(timeout time.Duration) *HealthHandler {
	return &HealthHandler{checks: make(map[string]HealthCheck), timeout: timeout}
}

// Register adds a named check
func (h *HealthHandler) Register(name string, check HealthCheck) {
	h.checks[name] = check
}

// Health answers 200 when every check passes and 503 otherwise
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report := healthReport{
		Status:     "up",
		Components: make(map[string]componentHealth, len(h.checks)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	for name, check := range h.checks {
		start := time.Now()
		c := componentHealth{Status: "up"}
		if err := check(ctx); err != nil {
			c.Status = "down"
			c.Message = err.Error()
			report.Status = "down"
		}
		c.Latency = time.Since(start).String()
		report.Components[name] = c
	}

	status := http.StatusOK
	if report.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, report)
}
