// Package handlers implements the REST API endpoint handlers for rootwalk.
//
// Endpoints:
//   - GET /api/v1/health  - Health check (resolver and journal connectivity)
//   - GET /api/v1/stats   - Runtime and resolver statistics
//   - GET /api/v1/resolve - Run an iterative resolution (?name=<domain>)
//   - GET /api/v1/history - Recent journaled lookups (?limit=<n>)
//
// All endpoints except /health support optional API key authentication via
// the X-API-Key header.
package handlers

import (
	"log/slog"
	"time"

	"github.com/ckousik/rootwalk/internal/history"
	"github.com/ckousik/rootwalk/internal/resolver"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	resolver  *resolver.Resolver
	journal   *history.Journal // May be nil when the journal is disabled
	logger    *slog.Logger
	startTime time.Time
}

// New creates a Handler. journal may be nil.
func New(r *resolver.Resolver, journal *history.Journal, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		resolver:  r,
		journal:   journal,
		logger:    logger,
		startTime: time.Now(),
	}
}
