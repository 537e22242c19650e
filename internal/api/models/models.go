// Package models defines response types for the rootwalk REST API.
// All types are JSON-serializable.
package models

import (
	"time"

	"github.com/ckousik/rootwalk/internal/history"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response.
type StatusResponse struct {
	Status string `json:"status"`
}

// ResolveResponse is the outcome of one iterative resolution.
type ResolveResponse struct {
	TraceID    string `json:"trace_id"`
	Domain     string `json:"domain"`
	Found      bool   `json:"found"`
	Address    string `json:"address,omitempty"`
	Queries    int    `json:"queries"`
	DurationMs int64  `json:"duration_ms"`
}

// HistoryResponse lists recent journaled lookups.
type HistoryResponse struct {
	Total   int64           `json:"total"`
	Entries []history.Entry `json:"entries"`
}

// ResolverStatsResponse reports resolver counters.
type ResolverStatsResponse struct {
	LookupsTotal  uint64  `json:"lookups_total"`
	LookupsFound  uint64  `json:"lookups_found"`
	LookupsMissed uint64  `json:"lookups_missed"`
	LookupsFailed uint64  `json:"lookups_failed"`
	QueriesSent   uint64  `json:"queries_sent"`
	Referrals     uint64  `json:"referrals"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
}

// ServerStatsResponse reports process runtime statistics.
type ServerStatsResponse struct {
	Uptime        string                `json:"uptime"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	StartTime     time.Time             `json:"start_time"`
	GoRoutines    int                   `json:"goroutines"`
	MemoryAllocMB float64               `json:"memory_alloc_mb"`
	NumCPU        int                   `json:"num_cpu"`
	Resolver      ResolverStatsResponse `json:"resolver"`
}
