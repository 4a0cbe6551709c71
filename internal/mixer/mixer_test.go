package mixer

import (
	"testing"

	"github.com/soundgraph/mixengine/internal/graph"
	"github.com/soundgraph/mixengine/internal/source"
)

// constSource is a graph.Source double that emits a constant amplitude on
// every frame, for exact arithmetic checks (volume linearity, limiter
// bound) without floating-point interpolation noise.
type constSource struct {
	id        string
	amplitude float32
}

func (c *constSource) ID() string                  { return c.id }
func (c *constSource) State() source.PlaybackState { return source.Playing }
func (c *constSource) Volume() float64             { return 1 }
func (c *constSource) AdvanceFade(int64) float64   { return 1 }
func (c *constSource) Mix(left, right []float32) {
	for i := range left {
		left[i], right[i] = c.amplitude, c.amplitude
	}
}

// unityEffect passes samples through unchanged, used to exercise the aux
// send path without altering amplitude (spec §8 S6's "unity-gain effect").
type unityEffect struct{ id string }

func (u *unityEffect) ID() string                             { return u.id }
func (u *unityEffect) Advance(int64)                          {}
func (u *unityEffect) Apply(_ int, block []float32) []float32 { return block }

// countingEffect is a unity-gain effect that records how many times
// Advance was called, so a test can assert "exactly once per period"
// regardless of how many senders feed the node carrying it.
type countingEffect struct {
	id       string
	advances int
}

func (c *countingEffect) ID() string                             { return c.id }
func (c *countingEffect) Advance(int64)                          { c.advances++ }
func (c *countingEffect) Apply(_ int, block []float32) []float32 { return block }

func busWithSource(busID, groupID, srcID string, amp float32) *graph.Bus {
	bus := graph.NewBus(busID)
	group := graph.NewGroup(groupID)
	group.AddSource(&constSource{id: srcID, amplitude: amp})
	bus.AddGroup(group)
	return bus
}

func TestMixPeriod_SilenceWithNoBuses(t *testing.T) {
	t.Parallel()

	e := newMixEngine(8)
	dst := make([]float32, 16)
	peak := e.mixPeriod(nil, nil, 1.0, dst)

	if peak != 0 {
		t.Fatalf("peak = %v, want 0", peak)
	}
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("dst[%d] = %v, want 0", i, v)
		}
	}
}

func TestMixPeriod_SilenceWhenAllBusesMuted(t *testing.T) {
	t.Parallel()

	bus := busWithSource("b1", "g1", "s1", 0.7)
	bus.SetMute(true)

	e := newMixEngine(8)
	dst := make([]float32, 16)
	e.mixPeriod([]*graph.Bus{bus}, nil, 1.0, dst)

	for i, v := range dst {
		if v != 0 {
			t.Fatalf("dst[%d] = %v, want 0 (bus muted)", i, v)
		}
	}
}

func TestMixPeriod_SoloDominanceAtBusLevel(t *testing.T) {
	t.Parallel()

	busA := busWithSource("A", "gA", "sA", 0.3)
	busB := busWithSource("B", "gB", "sB", 0.9)
	busA.SetSolo(true)

	e := newMixEngine(4)
	dst := make([]float32, 8)
	e.mixPeriod([]*graph.Bus{busA, busB}, nil, 1.0, dst)

	for i := 0; i < 4; i++ {
		if diff := dst[i*2] - 0.3; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("frame %d left = %v, want 0.3 (only soloed bus A should contribute)", i, dst[i*2])
		}
	}
}

func TestMixPeriod_SoloDominanceAtGroupLevel(t *testing.T) {
	t.Parallel()

	bus := graph.NewBus("main")
	gA := graph.NewGroup("gA")
	gA.AddSource(&constSource{id: "sA", amplitude: 0.2})
	gB := graph.NewGroup("gB")
	gB.AddSource(&constSource{id: "sB", amplitude: 0.8})
	gA.SetSolo(true)
	bus.AddGroup(gA)
	bus.AddGroup(gB)

	e := newMixEngine(4)
	dst := make([]float32, 8)
	e.mixPeriod([]*graph.Bus{bus}, nil, 1.0, dst)

	for i := 0; i < 4; i++ {
		if diff := dst[i*2] - 0.2; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("frame %d left = %v, want 0.2 (only soloed group gA should contribute)", i, dst[i*2])
		}
	}
}

func TestMixPeriod_VolumeLinearity(t *testing.T) {
	t.Parallel()

	bus := busWithSource("b1", "g1", "s1", 0.25)

	e1 := newMixEngine(4)
	dst1 := make([]float32, 8)
	e1.mixPeriod([]*graph.Bus{bus}, nil, 1.0, dst1)

	e2 := newMixEngine(4)
	dst2 := make([]float32, 8)
	e2.mixPeriod([]*graph.Bus{bus}, nil, 2.0, dst2)

	for i := range dst1 {
		want := dst1[i] * 2
		if diff := dst2[i] - want; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("sample %d = %v, want %v (doubling master_volume should double every sample)", i, dst2[i], want)
		}
	}
}

func TestMixPeriod_AuxSendRouting(t *testing.T) {
	t.Parallel()

	bus := busWithSource("main", "g1", "s1", 0.4)
	bus.SetSend("rev", 1.0)

	aux := graph.NewBus("rev")
	aux.AddEffect(&unityEffect{id: "unity"})

	e := newMixEngine(4)
	dst := make([]float32, 8)
	e.mixPeriod([]*graph.Bus{bus}, map[string]*graph.Bus{"rev": aux}, 1.0, dst)

	// master = bus_dry (0.4) + aux_contribution (1.0 send * unity aux volume 1.0 * 0.4) = 0.8
	for i := 0; i < 4; i++ {
		if diff := dst[i*2] - 0.8; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("frame %d left = %v, want 0.8 (S6: bus_dry + aux_contribution)", i, dst[i*2])
		}
	}
}

// TestMixPeriod_AuxSendAdvancesOnceRegardlessOfSenderCount guards against
// an aux bus fed by more than one main bus in the same period having its
// fade and effect chain advanced once per sender instead of once per
// period (the signal is supposed to be summed before the aux processes
// it, per spec §3's "receives summed signal from sends").
func TestMixPeriod_AuxSendAdvancesOnceRegardlessOfSenderCount(t *testing.T) {
	t.Parallel()

	busA := busWithSource("a", "ga", "sa", 0.2)
	busA.SetSend("rev", 1.0)
	busB := busWithSource("b", "gb", "sb", 0.3)
	busB.SetSend("rev", 1.0)

	counter := &countingEffect{id: "counter"}
	aux := graph.NewBus("rev")
	aux.AddEffect(counter)

	e := newMixEngine(4)
	dst := make([]float32, 8)
	e.mixPeriod([]*graph.Bus{busA, busB}, map[string]*graph.Bus{"rev": aux}, 1.0, dst)

	if counter.advances != 1 {
		t.Fatalf("aux effect Advance called %d times for one period with two senders, want 1", counter.advances)
	}

	// The aux's contribution should reflect the *summed* sends (0.2+0.3),
	// not just the last sender processed.
	want := float32(0.2+0.3) /* bus dry */ + float32(0.2+0.3) /* aux, unity gain, send 1.0 */
	for i := 0; i < 4; i++ {
		if diff := dst[i*2] - want; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("frame %d left = %v, want %v (dry sum + summed aux contribution)", i, dst[i*2], want)
		}
	}
}

func TestLimiter_ClampsToThresholdWithSign(t *testing.T) {
	t.Parallel()

	l := Limiter{Enabled: true, Threshold: 0.5}
	block := []float32{0.9, -0.9, 0.3, -0.3, 0.5, -0.5}
	l.Apply(block)

	want := []float32{0.5, -0.5, 0.3, -0.3, 0.5, -0.5}
	for i := range block {
		if block[i] != want[i] {
			t.Fatalf("block[%d] = %v, want %v", i, block[i], want[i])
		}
	}
}

func TestLimiter_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	l := Limiter{Enabled: false, Threshold: 0.1}
	block := []float32{0.9, -0.9}
	l.Apply(block)

	if block[0] != 0.9 || block[1] != -0.9 {
		t.Fatalf("disabled limiter modified block: %v", block)
	}
}

func TestMetrics_ClipCounterUsesPreLimiterPeak(t *testing.T) {
	t.Parallel()

	var m Metrics
	block := []float32{0.3, 0.3, 0.3, 0.3}
	m.update(block, 1.0, 0, 0)
	m.update(block, 0.4, 0, 0)

	snap := m.Snapshot()
	if snap.ClipCount != 1 {
		t.Fatalf("clip count = %d, want 1 (only the preLimiterPeak=1.0 block clips)", snap.ClipCount)
	}
}

func TestMetrics_ResetZeroesCounters(t *testing.T) {
	t.Parallel()

	var m Metrics
	m.update([]float32{1, 1}, 1.0, 0, 0)
	m.recordUnderrun()
	m.Reset()

	snap := m.Snapshot()
	if snap.ClipCount != 0 || snap.UnderrunCount != 0 || snap.Peak[0] != 0 {
		t.Fatalf("metrics not zeroed after Reset: %+v", snap)
	}
}
