package wikigate

import (
	"sync"
	"time"
)

// GateMetrics provides decision throughput and failure statistics for the
// authorization gate.
type GateMetrics struct {
	TotalDecisions  int64         `json:"total_decisions"`
	Allowed         int64         `json:"allowed"`
	Denied          int64         `json:"denied"`
	IntegrityFaults int64         `json:"integrity_faults"`
	AverageDuration time.Duration `json:"average_duration"`
	MaxDuration     time.Duration `json:"max_duration"`
	MinDuration     time.Duration `json:"min_duration"`
	LastReset       time.Time     `json:"last_reset"`
}

// gateMonitor holds the internal decision monitoring state.
type gateMonitor struct {
	mu              sync.Mutex
	totalCount      int64
	allowedCount    int64
	deniedCount     int64
	integrityCount  int64
	totalDuration   time.Duration
	maxDuration     time.Duration
	minDuration     time.Duration
	lastReset       time.Time
}

// newGateMonitor creates a new gate monitor.
func newGateMonitor() *gateMonitor {
	return &gateMonitor{
		minDuration: time.Hour, // Initialize to a large value
		lastReset:   time.Now(),
	}
}

// recordDecision records one resolved decision with its duration and outcome.
func (gm *gateMonitor) recordDecision(duration time.Duration, allowed, integrity bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.totalCount++
	gm.totalDuration += duration

	switch {
	case integrity:
		gm.integrityCount++
		gm.deniedCount++
	case allowed:
		gm.allowedCount++
	default:
		gm.deniedCount++
	}

	if duration > gm.maxDuration {
		gm.maxDuration = duration
	}
	if duration < gm.minDuration {
		gm.minDuration = duration
	}
}

// getMetrics returns the current decision metrics.
func (gm *gateMonitor) getMetrics() GateMetrics {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	var avgDuration time.Duration
	if gm.totalCount > 0 {
		avgDuration = gm.totalDuration / time.Duration(gm.totalCount)
	}

	return GateMetrics{
		TotalDecisions:  gm.totalCount,
		Allowed:         gm.allowedCount,
		Denied:          gm.deniedCount,
		IntegrityFaults: gm.integrityCount,
		AverageDuration: avgDuration,
		MaxDuration:     gm.maxDuration,
		MinDuration:     gm.minDuration,
		LastReset:       gm.lastReset,
	}
}

// reset resets all metrics.
func (gm *gateMonitor) reset() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.totalCount = 0
	gm.allowedCount = 0
	gm.deniedCount = 0
	gm.integrityCount = 0
	gm.totalDuration = 0
	gm.maxDuration = 0
	gm.minDuration = time.Hour
	gm.lastReset = time.Now()
}
