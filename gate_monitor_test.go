package wikigate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestGateMonitorRecording tests decision counters and durations
func TestGateMonitorRecording(t *testing.T) {
	gm := newGateMonitor()

	gm.recordDecision(10*time.Millisecond, true, false)
	gm.recordDecision(30*time.Millisecond, false, false)
	gm.recordDecision(20*time.Millisecond, false, true)

	m := gm.getMetrics()
	assert.Equal(t, int64(3), m.TotalDecisions)
	assert.Equal(t, int64(1), m.Allowed)
	assert.Equal(t, int64(2), m.Denied, "integrity faults count as denials")
	assert.Equal(t, int64(1), m.IntegrityFaults)
	assert.Equal(t, 20*time.Millisecond, m.AverageDuration)
	assert.Equal(t, 30*time.Millisecond, m.MaxDuration)
	assert.Equal(t, 10*time.Millisecond, m.MinDuration)
	assert.False(t, m.LastReset.IsZero())
}

// TestGateMonitorReset tests the reset path
func TestGateMonitorReset(t *testing.T) {
	gm := newGateMonitor()
	gm.recordDecision(time.Millisecond, true, false)

	before := gm.getMetrics()
	assert.Equal(t, int64(1), before.TotalDecisions)

	gm.reset()

	after := gm.getMetrics()
	assert.Equal(t, int64(0), after.TotalDecisions)
	assert.Equal(t, time.Duration(0), after.AverageDuration)
	assert.True(t, !after.LastReset.Before(before.LastReset))
}

// TestGateMonitorConcurrency tests parallel recording
func TestGateMonitorConcurrency(t *testing.T) {
	gm := newGateMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				gm.recordDecision(time.Microsecond, j%2 == 0, false)
			}
		}()
	}
	wg.Wait()

	m := gm.getMetrics()
	assert.Equal(t, int64(1000), m.TotalDecisions)
	assert.Equal(t, int64(500), m.Allowed)
	assert.Equal(t, int64(500), m.Denied)
}
