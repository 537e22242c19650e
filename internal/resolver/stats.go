package resolver

import "sync/atomic"

// Stats collects resolver counters.
// All methods are safe for concurrent use.
type Stats struct {
	lookupsTotal   atomic.Uint64
	lookupsFound   atomic.Uint64
	lookupsMissed  atomic.Uint64
	lookupsFailed  atomic.Uint64
	queriesSent    atomic.Uint64
	referrals      atomic.Uint64
	latencyTotalNs atomic.Uint64
}

// NewStats creates a new resolver statistics collector.
func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) recordLookup(found bool, err error, ns int64) {
	s.lookupsTotal.Add(1)
	switch {
	case err != nil:
		s.lookupsFailed.Add(1)
	case found:
		s.lookupsFound.Add(1)
	default:
		s.lookupsMissed.Add(1)
	}
	if ns > 0 {
		s.latencyTotalNs.Add(uint64(ns))
	}
}

func (s *Stats) recordQuery() {
	s.queriesSent.Add(1)
}

func (s *Stats) recordReferral() {
	s.referrals.Add(1)
}

// StatsSnapshot is a point-in-time snapshot of resolver statistics.
type StatsSnapshot struct {
	LookupsTotal  uint64
	LookupsFound  uint64
	LookupsMissed uint64
	LookupsFailed uint64
	QueriesSent   uint64
	Referrals     uint64
	AvgLatencyMs  float64
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	total := s.lookupsTotal.Load()
	latencyNs := s.latencyTotalNs.Load()

	avgLatencyMs := 0.0
	if total > 0 {
		avgLatencyMs = float64(latencyNs) / float64(total) / 1e6
	}

	return StatsSnapshot{
		LookupsTotal:  total,
		LookupsFound:  s.lookupsFound.Load(),
		LookupsMissed: s.lookupsMissed.Load(),
		LookupsFailed: s.lookupsFailed.Load(),
		QueriesSent:   s.queriesSent.Load(),
		Referrals:     s.referrals.Load(),
		AvgLatencyMs:  avgLatencyMs,
	}
}
