package mixer

// Limiter is the master block's final hard clip to ±threshold with sign
// preservation (spec §4.4, §4.6's "limiter enabled flag and threshold").
type Limiter struct {
	Enabled   bool
	Threshold float64 // (0.0, 1.0]
}

// Apply clamps every sample in block to [-Threshold, Threshold] in place.
// A disabled limiter is a no-op, matching "if limiter enabled, apply".
func (l *Limiter) Apply(block []float32) {
	if !l.Enabled {
		return
	}
	t := float32(l.Threshold)
	for i, s := range block {
		switch {
		case s > t:
			block[i] = t
		case s < -t:
			block[i] = -t
		}
	}
}
