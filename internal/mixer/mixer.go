// Package mixer implements the periodic block engine from spec §4.4: it
// walks buses → groups → sources every period, applies fades and effects,
// routes aux sends, runs the limiter, and hands the resulting master
// block to the output pump via a bounded queue.
package mixer

import (
	"github.com/soundgraph/mixengine/internal/effect"
	"github.com/soundgraph/mixengine/internal/graph"
	"github.com/soundgraph/mixengine/internal/source"
)

// stereoScratch is one of the preallocated stereo scratch blocks spec §3
// names (master, bus, group); a fourth, identically shaped scratch is
// used to pull one source's raw frames before they are summed weighted
// into the group scratch, and one per aux bus holds that aux's summed
// sends for the period (see auxAccumulator). All are allocated once —
// the aux accumulators lazily, the first period their aux id is seen —
// and zeroed-in-place every period after that, so the mix path performs
// no heap allocation once the graph's shape has stabilized (spec §8 #2).
type stereoScratch struct {
	left, right []float32
}

func newStereoScratch(period int) stereoScratch {
	return stereoScratch{left: make([]float32, period), right: make([]float32, period)}
}

func (s *stereoScratch) zero() {
	for i := range s.left {
		s.left[i] = 0
		s.right[i] = 0
	}
}

func addScaled(dst, src []float32, gain float64) {
	g := float32(gain)
	for i, v := range src {
		dst[i] += v * g
	}
}

func applyEffects(effects []effect.Effect, periodFrames int64, left, right []float32) (outL, outR []float32) {
	for _, e := range effects {
		e.Advance(periodFrames)
		left = e.Apply(0, left)
		right = e.Apply(1, right)
	}
	return left, right
}

func anyBusSolo(buses []*graph.Bus) bool {
	for _, b := range buses {
		if b.Solo() {
			return true
		}
	}
	return false
}

func anyGroupSolo(groups []*graph.Group) bool {
	for _, g := range groups {
		if g.Solo() {
			return true
		}
	}
	return false
}

// auxAccumulator holds one aux bus's summed sends for the current period.
// touched records whether any main bus actually sent to it this period, so
// an aux bus with no senders gets neither its fade nor its effect chain
// advanced (the same "only advance what's active" rule applied to bus and
// group fades above).
type auxAccumulator struct {
	stereoScratch
	touched bool
}

// mixEngine holds the scratch buffers and period shape shared by every
// call to mixPeriod; it carries no lifecycle state of its own.
type mixEngine struct {
	period   int
	master   stereoScratch
	bus      stereoScratch
	group    stereoScratch
	srcBuf   stereoScratch
	auxAccum map[string]*auxAccumulator
}

func newMixEngine(period int) *mixEngine {
	return &mixEngine{
		period:   period,
		master:   newStereoScratch(period),
		bus:      newStereoScratch(period),
		group:    newStereoScratch(period),
		srcBuf:   newStereoScratch(period),
		auxAccum: make(map[string]*auxAccumulator),
	}
}

// auxAccumFor returns the accumulator for auxID, allocating it the first
// time this aux id is ever seen and reusing it every period after.
func (e *mixEngine) auxAccumFor(auxID string) *auxAccumulator {
	acc, ok := e.auxAccum[auxID]
	if !ok {
		acc = &auxAccumulator{stereoScratch: newStereoScratch(e.period)}
		e.auxAccum[auxID] = acc
	}
	return acc
}

// mixPeriod produces one period's worth of master samples into
// interleaved dst (len == period*2) and returns the pre-limiter absolute
// peak across both channels, for clip accounting (spec §4.4, §8 #11's
// numeric semantics: "no saturation during sum; the limiter and master
// quantization step are the only clamps").
func (e *mixEngine) mixPeriod(buses []*graph.Bus, auxBuses map[string]*graph.Bus, masterVolume float64, dst []float32) float32 {
	periodFrames := int64(e.period)
	e.master.zero()

	for auxID := range auxBuses {
		acc := e.auxAccumFor(auxID)
		acc.zero()
		acc.touched = false
	}

	hasSoloBus := anyBusSolo(buses)

	for _, bus := range buses {
		if bus.Mute() || (hasSoloBus && !bus.Solo()) {
			continue
		}

		e.bus.zero()
		busVol := bus.AdvanceFade(periodFrames)

		groups := bus.Groups()
		hasSoloGroup := anyGroupSolo(groups)

		for _, g := range groups {
			if g.Mute() || (hasSoloGroup && !g.Solo()) {
				continue
			}

			e.group.zero()
			groupVol := g.AdvanceFade(periodFrames)

			for _, s := range g.Sources() {
				if s.State() != source.Playing {
					continue
				}
				srcVol := s.AdvanceFade(periodFrames)
				e.srcBuf.zero()
				s.Mix(e.srcBuf.left, e.srcBuf.right)
				addScaled(e.group.left, e.srcBuf.left, srcVol)
				addScaled(e.group.right, e.srcBuf.right, srcVol)
			}

			gl, gr := applyEffects(g.Effects(), periodFrames, e.group.left, e.group.right)
			addScaled(e.bus.left, gl, groupVol)
			addScaled(e.bus.right, gr, groupVol)
		}

		bl, br := applyEffects(bus.Effects(), periodFrames, e.bus.left, e.bus.right)

		for auxID, level := range bus.Sends() {
			if _, ok := auxBuses[auxID]; !ok {
				continue
			}
			acc := e.auxAccumFor(auxID)
			addScaled(acc.left, bl, level)
			addScaled(acc.right, br, level)
			acc.touched = true
		}

		addScaled(e.master.left, bl, busVol)
		addScaled(e.master.right, br, busVol)
	}

	// Each aux bus's fade and effect chain advance exactly once per period,
	// no matter how many main buses sent to it (spec §3's "receives summed
	// signal from sends" — the sum happens before the aux's own processing,
	// not once per sender).
	for auxID, auxBus := range auxBuses {
		acc, ok := e.auxAccum[auxID]
		if !ok || !acc.touched || auxBus.Mute() {
			continue
		}
		al, ar := applyEffects(auxBus.Effects(), periodFrames, acc.left, acc.right)
		auxVol := auxBus.AdvanceFade(periodFrames)
		addScaled(e.master.left, al, auxVol)
		addScaled(e.master.right, ar, auxVol)
	}

	var peak float32
	for i := 0; i < e.period; i++ {
		l := e.master.left[i] * float32(masterVolume)
		r := e.master.right[i] * float32(masterVolume)
		dst[i*2] = l
		dst[i*2+1] = r
		if a := abs32(l); a > peak {
			peak = a
		}
		if a := abs32(r); a > peak {
			peak = a
		}
	}
	return peak
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
