// SPDX-License-Identifier: EPL-2.0

// Package mixengine is a real-time audio mixing engine: many concurrently
// playing sources — in-memory clips and disk-streamed tracks — flow through
// a hierarchical routing graph (sources → groups → main buses → auxiliary
// sends → master) with per-node effects, fades, solo/mute, metering, and a
// limiter, and are delivered as a steady stream of stereo blocks to a
// sound-card stream.
//
// # Quick start
//
// The simplest use decodes a file, drops it in a group, the group in a
// bus, and starts the system:
//
//	sys, _ := mixengine.New(mixengine.Config{SampleRate: 44100, Period: 1024})
//	src, _ := sys.LoadAudio("track.wav", "", false)
//	group := sys.CreateGroup("")
//	sys.AddToGroup(group, src)
//	bus := sys.CreateBus("main")
//	sys.AddToBus(bus, group)
//	sys.AddBus(bus)
//	sys.Start()
//
//	// Source is an interface; playback control lives on the concrete
//	// *source.InMemory / *source.Streaming LoadAudio actually returns.
//	src.(interface{ Play(float64) }).Play(0)
//
// # Routing
//
// Buses can send a fraction of their post-effect signal to an auxiliary
// bus, which mixes its own return directly to master. AddEffect and
// RemoveEffect are free functions rather than bus/group methods, since
// both node kinds share one effect-chain implementation:
//
//	aux := sys.CreateBus("reverb-return")
//	mixengine.AddEffect(aux, sys.CreateReverb(""))
//	sys.AddAuxBus("reverb-return", aux)
//	sys.AddSend(bus, "reverb-return", 0.3)
//
// # Effects
//
// Reverb, delay, compressor and EQ filter are all modulable: their
// parameters can be ramped smoothly with UpdateEffectParams instead of
// jumping discontinuously.
//
// # Observation
//
// GetMetrics reports peak, RMS, clip count, underrun count and CPU usage,
// refreshed every period; ResetMetrics zeroes the counters without
// touching playback state.
package mixengine
