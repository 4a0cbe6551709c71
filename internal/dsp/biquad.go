// Package dsp implements the external DSP-filter-design collaborator named
// in spec §6: given a filter kind, frequency, Q and sample rate, produce
// coefficients a fourth-order filter can apply to a block of samples.
//
// No pack repo ships an importable RBJ/Butterworth coefficient-design
// library (the one hit, a standalone algo-dsp reference file, wraps an
// external engine with no module path in the retrieval pack — see
// DESIGN.md), so this is the one hand-written standard-library component in
// the engine: plain math.Sin/math.Cos/math.Pow cookbook biquad design.
package dsp

import "math"

// Kind selects the filter response.
type Kind int

const (
	Lowpass Kind = iota
	Highpass
	Bandpass
)

// Coefficients are the normalized RBJ biquad coefficients (a0 already
// divided out), applied as:
//
//	y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Design computes RBJ cookbook coefficients for a single biquad section at
// the given kind/frequency/Q/sampleRate.
func Design(kind Kind, frequency, q float64, sampleRate int) Coefficients {
	if frequency <= 0 {
		frequency = 1
	}
	if frequency > float64(sampleRate)/2 {
		frequency = float64(sampleRate) / 2
	}
	if q <= 0 {
		q = 0.707
	}

	w0 := 2 * math.Pi * frequency / float64(sampleRate)
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case Highpass:
		b0 = (1 + cosw0) / 2
		b1 = -(1 + cosw0)
		b2 = (1 + cosw0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	default: // Lowpass
		b0 = (1 - cosw0) / 2
		b1 = 1 - cosw0
		b2 = (1 - cosw0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

// DesignOrder4 cascades two identical biquad sections to approximate a
// fourth-order (24dB/oct) response, the order the EQ effect contract (§4.3)
// calls for.
func DesignOrder4(kind Kind, frequency, q float64, sampleRate int) [2]Coefficients {
	c := Design(kind, frequency, q, sampleRate)
	return [2]Coefficients{c, c}
}

// Biquad holds the running state (two-sample history) for one cascaded
// section on one channel.
type Biquad struct {
	Coefficients
	x1, x2, y1, y2 float64
}

func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}

func (b *Biquad) SetCoefficients(c Coefficients) {
	b.Coefficients = c
}

func (b *Biquad) Process(x float32) float32 {
	xf := float64(x)
	y := b.B0*xf + b.B1*b.x1 + b.B2*b.x2 - b.A1*b.y1 - b.A2*b.y2
	b.x2, b.x1 = b.x1, xf
	b.y2, b.y1 = b.y1, y
	return float32(y)
}

// Cascade runs two biquad sections in series, implementing the order-4
// filter the EQ effect contract specifies.
type Cascade struct {
	Stages [2]Biquad
}

func (c *Cascade) SetCoefficients(stages [2]Coefficients) {
	c.Stages[0].SetCoefficients(stages[0])
	c.Stages[1].SetCoefficients(stages[1])
}

func (c *Cascade) Reset() {
	c.Stages[0].Reset()
	c.Stages[1].Reset()
}

func (c *Cascade) Process(x float32) float32 {
	return c.Stages[1].Process(c.Stages[0].Process(x))
}

func (c *Cascade) ProcessBlock(block []float32) {
	for i, x := range block {
		block[i] = c.Process(x)
	}
}
