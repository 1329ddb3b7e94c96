package iofetch

import (
	"sync/atomic"
)

// Stats holds shared run counters. Every component that touches the
// network or the cache increments them; stages print them in their
// run summary so a run can be audited without re-deriving state from
// the store.
type Stats struct {
	networkCalls atomic.Int64
	cacheHits    atomic.Int64
	retries      atomic.Int64
	failed       atomic.Int64
}

// NewStats creates a zeroed Stats. One instance is constructed per run
// and passed to every component; there is no ambient global.
func NewStats() *Stats {
	return &Stats{}
}

// AddNetworkCall records one completed upstream request.
func (s *Stats) AddNetworkCall() { s.networkCalls.Add(1) }

// AddCacheHit records one cache short-circuit.
func (s *Stats) AddCacheHit() { s.cacheHits.Add(1) }

// AddRetry records one retried request attempt.
func (s *Stats) AddRetry() { s.retries.Add(1) }

// AddFailure records one permanently failed request.
func (s *Stats) AddFailure() { s.failed.Add(1) }

// NetworkCalls returns the number of completed upstream requests.
func (s *Stats) NetworkCalls() int64 { return s.networkCalls.Load() }

// CacheHits returns the number of cache short-circuits.
func (s *Stats) CacheHits() int64 { return s.cacheHits.Load() }

// Retries returns the number of retried attempts.
func (s *Stats) Retries() int64 { return s.retries.Load() }

// Failures returns the number of permanently failed requests.
func (s *Stats) Failures() int64 { return s.failed.Load() }
