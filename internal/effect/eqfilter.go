package effect

import (
	"math"

	"github.com/soundgraph/mixengine/internal/dsp"
)

// EQFilter implements the biquad/Butterworth EQ from spec §4.3: the filter
// coefficient math is delegated to internal/dsp (the external DSP
// collaborator named in spec §6); this type only drives parameter ramps
// and blends the filtered signal against the dry signal by gain.
type EQFilter struct {
	Modulable
	id         string
	kind       dsp.Kind
	sampleRate int
	cascades   [2]dsp.Cascade
}

func NewEQFilter(id string, kind dsp.Kind, sampleRate int) *EQFilter {
	e := &EQFilter{
		id:         id,
		kind:       kind,
		sampleRate: sampleRate,
		Modulable: NewModulable(map[string]float64{
			"frequency": 1000,
			"q":         0.707,
			"gain":      0,
		}),
	}
	e.recomputeCoefficients()
	return e
}

func (e *EQFilter) ID() string { return e.id }

// Advance moves the parameter ramp and, since frequency/q may have moved,
// redesigns the biquad coefficients for this block.
func (e *EQFilter) Advance(periodFrames int64) {
	e.Modulable.Advance(periodFrames)
	e.recomputeCoefficients()
}

func (e *EQFilter) recomputeCoefficients() {
	coeffs := dsp.DesignOrder4(e.kind, e.Param("frequency"), e.Param("q"), e.sampleRate)
	e.cascades[0].SetCoefficients(coeffs)
	e.cascades[1].SetCoefficients(coeffs)
}

func (e *EQFilter) Apply(channel int, block []float32) []float32 {
	if channel < 0 || channel > 1 {
		return block
	}
	gainFactor := float32(math.Pow(10, e.Param("gain")/20) - 1)
	casc := &e.cascades[channel]
	for i, x := range block {
		filtered := casc.Process(x)
		block[i] = x + (filtered-x)*gainFactor
	}
	return block
}

func (e *EQFilter) Reset() {
	e.cascades[0].Reset()
	e.cascades[1].Reset()
}
