package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ckousik/rootwalk/internal/api/models"
)

const defaultHistoryLimit = 50

// History returns recent journaled lookups, newest first.
func (h *Handler) History(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "history journal disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.journal.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	total, err := h.journal.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.HistoryResponse{Total: total, Entries: entries})
}
