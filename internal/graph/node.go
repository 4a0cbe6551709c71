package graph

import (
	"sync"

	"github.com/soundgraph/mixengine/internal/effect"
	"github.com/soundgraph/mixengine/internal/util"
)

const (
	minVolume = 0.0
	maxVolume = 2.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Node is the shared volume/fade/solo/mute/effect-chain/mutex state every
// Group and Bus embeds (spec §3). Every method takes the mutex exactly
// once — the idiomatic-Go substitute for a reentrant mutex (SPEC_FULL §4).
type Node struct {
	mu sync.Mutex

	id string

	volume        float64
	desiredVolume float64
	fadeFrom      float64
	rampTo        float64
	ramp          utils.Ramp

	solo bool
	mute bool

	effects []effect.Effect
}

func newNode(id string) Node {
	return Node{
		id:            id,
		volume:        1.0,
		desiredVolume: 1.0,
		rampTo:        1.0,
	}
}

func (n *Node) ID() string { return n.id }

func (n *Node) Volume() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.volume
}

// SetVolume clamps v to [0,2]; with fadeSeconds>0 it starts a ramp from the
// current volume, otherwise it takes effect immediately.
func (n *Node) SetVolume(v float64, fadeSeconds float64, rate int) {
	v = clamp(v, minVolume, maxVolume)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.desiredVolume = v
	if fadeSeconds <= 0 {
		n.volume = v
		n.rampTo = v
		n.ramp = utils.Ramp{}
		return
	}
	n.fadeFrom = n.volume
	n.rampTo = v
	n.ramp = utils.NewRamp(secondsToFrames(fadeSeconds, rate))
}

// AdvanceFade moves the volume ramp forward by periodFrames and returns the
// resulting current volume.
func (n *Node) AdvanceFade(periodFrames int64) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.ramp.Done() {
		t, done := n.ramp.Advance(periodFrames)
		if done {
			n.volume = n.rampTo
		} else {
			n.volume = utils.Lerp(n.fadeFrom, n.rampTo, t)
		}
	}
	return n.volume
}

func (n *Node) SetSolo(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.solo = v
}

func (n *Node) Solo() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.solo
}

func (n *Node) SetMute(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mute = v
}

func (n *Node) Mute() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mute
}

func (n *Node) AddEffect(e effect.Effect) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.effects = append(n.effects, e)
}

func (n *Node) RemoveEffect(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, e := range n.effects {
		if e.ID() == id {
			n.effects = append(n.effects[:i], n.effects[i+1:]...)
			return true
		}
	}
	return false
}

// Effects returns a snapshot of the ordered effect chain. The mixer applies
// each effect outside this lock to avoid holding a node's mutex for the
// duration of DSP work.
func (n *Node) Effects() []effect.Effect {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]effect.Effect, len(n.effects))
	copy(out, n.effects)
	return out
}

func secondsToFrames(seconds float64, rate int) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(seconds*float64(rate) + 0.5)
}
