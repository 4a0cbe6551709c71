// Package effect implements the modulable effect contract from spec §3/§4.3:
// a stateful per-channel block transform whose numeric parameters can be
// ramped from their current value to a target over a cosine-eased window.
package effect

// Effect is the node-owned, per-channel block transform. Advance moves the
// effect's parameter ramp forward by one period's worth of frames; it is
// called once per block regardless of channel count. Apply is then called
// once per channel with that period's already-advanced parameters, and
// mutates block in place (returning it) so the mix path performs no
// allocation after warm-up.
type Effect interface {
	ID() string
	Advance(periodFrames int64)
	Apply(channel int, block []float32) []float32
}
