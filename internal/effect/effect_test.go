package effect

import (
	"math"
	"testing"

	"github.com/soundgraph/mixengine/internal/dsp"
)

func TestModulable_UpdateParamsRampsThenSnaps(t *testing.T) {
	t.Parallel()

	m := NewModulable(map[string]float64{"x": 0})
	m.UpdateParams(map[string]float64{"x": 1}, 100)

	if got := m.Param("x"); got != 0 {
		t.Fatalf("before advancing, x = %v, want 0", got)
	}

	m.Advance(50)
	mid := m.Param("x")
	if mid <= 0 || mid >= 1 {
		t.Fatalf("mid-ramp x = %v, want strictly between 0 and 1", mid)
	}

	m.Advance(50)
	if got := m.Param("x"); got != 1 {
		t.Fatalf("after ramp completion, x = %v, want exactly 1", got)
	}
}

func TestModulable_ZeroRampIsInstant(t *testing.T) {
	t.Parallel()

	m := NewModulable(map[string]float64{"x": 0})
	m.UpdateParams(map[string]float64{"x": 5}, 0)
	m.Advance(0)

	if got := m.Param("x"); got != 5 {
		t.Fatalf("x = %v, want 5 (instant transition)", got)
	}
}

func TestReverb_SilenceInSilenceOut(t *testing.T) {
	t.Parallel()

	r := NewReverb("rev1")
	block := make([]float32, 256)
	r.Advance(256)
	got := r.Apply(0, block)

	for i, v := range got {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestReverb_TapCarriesAcrossBlocks(t *testing.T) {
	t.Parallel()

	r := NewReverb("rev1")
	r.UpdateParams(map[string]float64{"dry_level": 0, "wet_level": 1, "room_size": 1, "damping": 0}, 0)
	r.Advance(0)

	impulse := make([]float32, 1323-5)
	impulse[0] = 1
	r.Apply(0, impulse)

	nextBlock := make([]float32, 10)
	out := r.Apply(0, nextBlock)

	var peak float32
	for _, v := range out {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		t.Fatalf("expected the first reverb tap to carry into a later block, got all zero")
	}
}

func TestDelay_FeedbackDecays(t *testing.T) {
	t.Parallel()

	d := NewDelay("d1", 1000)
	d.UpdateParams(map[string]float64{"delay_time": 0.01, "feedback": 0.5, "wet_level": 1}, 0)
	d.Advance(0)

	block := make([]float32, 100)
	block[0] = 1
	out := d.Apply(0, block)

	var peaks []float32
	for _, v := range out {
		if v > 0 {
			peaks = append(peaks, v)
		}
	}
	if len(peaks) < 2 {
		t.Fatalf("expected multiple decaying echoes, got %d nonzero samples", len(peaks))
	}
	for i := 1; i < len(peaks); i++ {
		if peaks[i] >= peaks[i-1] {
			t.Fatalf("echo %d (%v) did not decay relative to echo %d (%v)", i, peaks[i], i-1, peaks[i-1])
		}
	}
}

func TestCompressor_ReducesGainAboveThreshold(t *testing.T) {
	t.Parallel()

	c := NewCompressor("c1", 44100)
	c.UpdateParams(map[string]float64{"threshold": 0.1, "ratio": 4, "attack": 0.0001, "release": 0.0001}, 0)
	c.Advance(0)

	block := make([]float32, 4410)
	for i := range block {
		block[i] = 0.9
	}
	out := c.Apply(0, block)

	last := out[len(out)-1]
	if last >= 0.9 {
		t.Fatalf("compressor did not reduce gain: last sample = %v", last)
	}
	if last <= 0 {
		t.Fatalf("compressor over-reduced gain to %v", last)
	}
}

func TestEQFilter_UnityGainIsTransparent(t *testing.T) {
	t.Parallel()

	eq := NewEQFilter("eq1", dsp.Lowpass, 44100)
	eq.UpdateParams(map[string]float64{"gain": 0}, 0)
	eq.Advance(0)

	block := []float32{0.1, -0.2, 0.3, 0.4, -0.5}
	want := append([]float32{}, block...)
	got := eq.Apply(0, block)

	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v (0dB gain must be transparent)", i, got[i], want[i])
		}
	}
}

func TestEQFilter_NonZeroGainChangesSignal(t *testing.T) {
	t.Parallel()

	eq := NewEQFilter("eq1", dsp.Lowpass, 44100)
	eq.UpdateParams(map[string]float64{"frequency": 200, "gain": 12}, 0)
	eq.Advance(0)

	block := make([]float32, 512)
	for i := range block {
		block[i] = float32(math.Sin(float64(i) * 0.3))
	}
	out := eq.Apply(0, block)

	var differs bool
	for i, v := range out {
		if math.Abs(float64(v)-math.Sin(float64(i)*0.3)) > 1e-4 {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatalf("expected +12dB boosted filter band to change the signal")
	}
}
