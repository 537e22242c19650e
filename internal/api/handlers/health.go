package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ckousik/rootwalk/internal/api/models"
)

// Health returns server health status. The journal connection is pinged
// when one is configured.
func (h *Handler) Health(c *gin.Context) {
	if h.journal != nil {
		if err := h.journal.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "history journal unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Stats returns runtime statistics including memory, goroutines and
// resolver counters.
func (h *Handler) Stats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)
	snap := h.resolver.Stats().Snapshot()

	c.JSON(http.StatusOK, models.ServerStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		GoRoutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(m.Alloc) / 1024 / 1024,
		NumCPU:        runtime.NumCPU(),
		Resolver: models.ResolverStatsResponse{
			LookupsTotal:  snap.LookupsTotal,
			LookupsFound:  snap.LookupsFound,
			LookupsMissed: snap.LookupsMissed,
			LookupsFailed: snap.LookupsFailed,
			QueriesSent:   snap.QueriesSent,
			Referrals:     snap.Referrals,
			AvgLatencyMs:  snap.AvgLatencyMs,
		},
	})
}
