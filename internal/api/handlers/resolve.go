package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ckousik/rootwalk/internal/api/models"
)

// Resolve runs one iterative resolution for the domain in the `name` query
// parameter and returns the outcome. The lookup is journaled when a journal
// is configured.
func (h *Handler) Resolve(c *gin.Context) {
	name := strings.TrimSuffix(strings.TrimSpace(c.Query("name")), ".")
	if name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name query parameter required"})
		return
	}

	lookup, err := h.resolver.Resolve(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: err.Error()})
		return
	}

	if h.journal != nil {
		if jerr := h.journal.Record(lookup); jerr != nil {
			h.logger.Warn("failed to journal lookup", "error", jerr)
		}
	}

	resp := models.ResolveResponse{
		TraceID:    lookup.TraceID,
		Domain:     lookup.Domain,
		Found:      lookup.Found,
		Queries:    lookup.Queries,
		DurationMs: lookup.Duration.Milliseconds(),
	}
	if lookup.Found {
		resp.Address = lookup.Addr.String()
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusNotFound, resp)
}
