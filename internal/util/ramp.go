package utils

import "math"

// Ramp is a sample-counted cosine ease used for both volume fades and
// modulable-effect parameter interpolation (spec §4.1, §4.3): a ramp
// advances by the number of frames processed each period and reports the
// eased progress between 0 and 1 until it completes.
type Ramp struct {
	Total   int64
	Counter int64
}

// NewRamp returns a ramp that completes after totalFrames frames. A
// non-positive totalFrames produces an already-complete ramp (instant
// transition, matching "fade=0" in the control contract).
func NewRamp(totalFrames int64) Ramp {
	return Ramp{Total: totalFrames}
}

// Done reports whether the ramp has already reached its target.
func (r *Ramp) Done() bool {
	return r.Total <= 0 || r.Counter >= r.Total
}

// Advance moves the ramp forward by n frames and returns the eased
// progress t in [0,1] — t=0.5*(1-cos(pi*counter/total)) — along with
// whether the ramp is now complete. Once complete it stays pinned at t=1.
func (r *Ramp) Advance(n int64) (float64, bool) {
	if r.Done() {
		return 1, true
	}
	r.Counter += n
	if r.Counter >= r.Total {
		r.Counter = r.Total
		return 1, true
	}
	t := float64(r.Counter) / float64(r.Total)
	return 0.5 * (1 - math.Cos(math.Pi*t)), false
}

// Lerp linearly interpolates between from and to by eased progress t.
func Lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
