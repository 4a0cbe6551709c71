package mixer

import (
	"math"
	"sync"
	"time"
)

// Metrics holds the per-block observation state spec §3 describes: a
// ballistic peak vector, per-block RMS, clip/underrun counters, and CPU
// usage as mix-wall-time over period duration.
type Metrics struct {
	mu sync.Mutex

	peak          [2]float64
	rms           [2]float64
	clipCount     uint64
	underrunCount uint64
	cpuPercent    float64
}

// Snapshot is an immutable copy returned to control-API callers.
type Snapshot struct {
	Peak          [2]float64
	RMS           [2]float64
	ClipCount     uint64
	UnderrunCount uint64
	CPUPercent    float64
}

// update folds one block into the metrics. preLimiterPeak is the block's
// absolute peak before the limiter ran (clip counting uses this, per S5:
// "clip_count increments at every block whose pre-limiter peak reached
// 1.0" — a block the limiter clamped to threshold<1.0 would never show a
// post-limiter peak of 1.0). The peak/RMS gauges observe the final block
// that is actually enqueued for output.
func (m *Metrics) update(block []float32, preLimiterPeak float32, mixTime, periodDuration time.Duration) {
	var blockPeak [2]float64
	var sumSquares [2]float64
	frames := len(block) / 2
	for f := 0; f < frames; f++ {
		for ch := 0; ch < 2; ch++ {
			s := float64(block[f*2+ch])
			a := math.Abs(s)
			if a > blockPeak[ch] {
				blockPeak[ch] = a
			}
			sumSquares[ch] += s * s
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := 0; ch < 2; ch++ {
		decayed := m.peak[ch] * 0.95
		if blockPeak[ch] > decayed {
			m.peak[ch] = blockPeak[ch]
		} else {
			m.peak[ch] = decayed
		}
		if frames > 0 {
			m.rms[ch] = math.Sqrt(sumSquares[ch] / float64(frames))
		} else {
			m.rms[ch] = 0
		}
	}
	if preLimiterPeak >= 1.0 {
		m.clipCount++
	}
	if periodDuration > 0 {
		m.cpuPercent = float64(mixTime) / float64(periodDuration) * 100
	}
}

func (m *Metrics) recordUnderrun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.underrunCount++
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Peak:          m.peak,
		RMS:           m.rms,
		ClipCount:     m.clipCount,
		UnderrunCount: m.underrunCount,
		CPUPercent:    m.cpuPercent,
	}
}

// Reset zeroes every counter and gauge without touching engine state
// (spec §6's reset_metrics).
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peak = [2]float64{}
	m.rms = [2]float64{}
	m.clipCount = 0
	m.underrunCount = 0
	m.cpuPercent = 0
}
