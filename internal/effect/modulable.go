package effect

import (
	"maps"
	"sync"

	"github.com/soundgraph/mixengine/internal/util"
)

// Modulable is the shared parameter-map/target-map/ramp machinery spec §3
// describes for every effect: UpdateParams sets a new target and a ramp
// window; Advance moves the ramp and cosine-interpolates every tracked
// parameter from its current value toward its target.
type Modulable struct {
	mu      sync.Mutex
	current map[string]float64
	target  map[string]float64
	ramp    utils.Ramp
}

// NewModulable seeds the parameter map with initial values, already at
// target (no ramp in progress).
func NewModulable(initial map[string]float64) Modulable {
	return Modulable{
		current: maps.Clone(initial),
		target:  maps.Clone(initial),
	}
}

// UpdateParams sets new target values and starts a ramp of rampFrames
// frames; parameters not present in newParams are left unchanged.
func (m *Modulable) UpdateParams(newParams map[string]float64, rampFrames int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range newParams {
		m.target[k] = v
	}
	m.ramp = utils.NewRamp(rampFrames)
}

// Advance moves the ramp forward by periodFrames and cosine-interpolates
// every parameter toward its target. After the ramp completes, parameters
// equal their target exactly (invariant: spec §8 #8).
func (m *Modulable) Advance(periodFrames int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, done := m.ramp.Advance(periodFrames)
	for k, tgt := range m.target {
		if done {
			m.current[k] = tgt
			continue
		}
		m.current[k] = utils.Lerp(m.current[k], tgt, t)
	}
}

// Param returns the current (possibly mid-ramp) value of a parameter.
func (m *Modulable) Param(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current[name]
}

// Params snapshots every current parameter value.
func (m *Modulable) Params() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.current)
}
