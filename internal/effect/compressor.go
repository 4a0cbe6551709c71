package effect

import "math"

// Compressor implements the per-sample envelope-follower compressor from
// spec §4.3: gain is reduced with slope 1/ratio once the envelope exceeds
// threshold, with independent per-sample attack/release coefficients.
type Compressor struct {
	Modulable
	id         string
	sampleRate int
	envelope   [2]float64
}

func NewCompressor(id string, sampleRate int) *Compressor {
	return &Compressor{
		id:         id,
		sampleRate: sampleRate,
		Modulable: NewModulable(map[string]float64{
			"threshold": 0.8,
			"ratio":     2.0,
			"attack":    0.01,
			"release":   0.15,
		}),
	}
}

func (c *Compressor) ID() string { return c.id }

func (c *Compressor) Apply(channel int, block []float32) []float32 {
	if channel < 0 || channel > 1 {
		return block
	}
	threshold := c.Param("threshold")
	ratio := c.Param("ratio")
	if ratio < 1 {
		ratio = 1
	}
	attackCoef := attackReleaseCoefficient(c.Param("attack"), c.sampleRate)
	releaseCoef := attackReleaseCoefficient(c.Param("release"), c.sampleRate)

	env := c.envelope[channel]
	for i, x := range block {
		level := math.Abs(float64(x))
		if level > env {
			env = attackCoef*env + (1-attackCoef)*level
		} else {
			env = releaseCoef*env + (1-releaseCoef)*level
		}

		gain := 1.0
		if env > threshold && env > 0 {
			targetEnv := threshold + (env-threshold)/ratio
			gain = targetEnv / env
		}
		block[i] = float32(float64(x) * gain)
	}
	c.envelope[channel] = env
	return block
}

func attackReleaseCoefficient(seconds float64, sampleRate int) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Exp(-1 / (seconds * float64(sampleRate)))
}
