// Package graph implements the routing graph's shared node state and the
// Group/Bus entities from spec §3: ordered collections with their own
// volume/fade/effect chain/solo/mute, the way other_examples/
// shaban-macaudio__channel.go factors shared channel state under a
// BaseChannel, adapted here from AVAudioEngine pointer fields to plain Go
// volume/fade/mutex fields.
package graph

import "github.com/soundgraph/mixengine/internal/source"

// Source is the minimal surface a group needs from a frame producer: its
// own identity/state/volume plus the ability to advance its fade and mix a
// period's worth of frames. internal/source's InMemory and Streaming types
// satisfy this without graph importing anything source-specific beyond the
// shared PlaybackState enum.
type Source interface {
	ID() string
	State() source.PlaybackState
	Volume() float64
	AdvanceFade(periodFrames int64) float64
	Mix(left, right []float32)
}
