// SPDX-License-Identifier: EPL-2.0

package mixengine

import (
	"fmt"

	"github.com/soundgraph/mixengine/internal/dsp"
	"github.com/soundgraph/mixengine/internal/effect"
	"github.com/soundgraph/mixengine/internal/graph"
)

// --- Graph construction (spec §6: create_group, create_bus, add_bus,
// add_to_bus, add_to_group, remove_*, add_send, remove_send) ---

func (s *System) CreateGroup(id string) *graph.Group { return graph.NewGroup(newID(id)) }
func (s *System) CreateBus(id string) *graph.Bus     { return graph.NewBus(newID(id)) }

func (s *System) AddBus(bus *graph.Bus)       { s.m.AddBus(bus) }
func (s *System) RemoveBus(id string) bool    { return s.m.RemoveBus(id) }
func (s *System) FindBus(id string) (*graph.Bus, bool) { return s.m.FindBus(id) }
func (s *System) Buses() []*graph.Bus         { return s.m.Buses() }

func (s *System) AddAuxBus(id string, bus *graph.Bus) { s.m.AddAuxBus(newID(id), bus) }
func (s *System) RemoveAuxBus(id string) bool         { return s.m.RemoveAuxBus(id) }
func (s *System) FindAuxBus(id string) (*graph.Bus, bool) { return s.m.FindAuxBus(id) }

func (s *System) AddToBus(bus *graph.Bus, group *graph.Group)    { bus.AddGroup(group) }
func (s *System) RemoveFromBus(bus *graph.Bus, groupID string) bool { return bus.RemoveGroup(groupID) }

func (s *System) AddToGroup(group *graph.Group, src Source)         { group.AddSource(src) }
func (s *System) RemoveFromGroup(group *graph.Group, srcID string) bool {
	return group.RemoveSource(srcID)
}

// AddSend sets bus's send level to the named aux bus, clamped to
// [0,1] (spec §3/§4.4's send topology: main bus → aux bus only).
func (s *System) AddSend(bus *graph.Bus, auxID string, level float64) { bus.SetSend(auxID, level) }
func (s *System) RemoveSend(bus *graph.Bus, auxID string)             { bus.RemoveSend(auxID) }

// soloMuter is satisfied by *graph.Group and *graph.Bus via their
// embedded Node — Solo and Mute below are generic pass-throughs so
// callers get one entry point regardless of node kind (spec §6's
// `solo`/`mute` don't distinguish group vs. bus).
type soloMuter interface {
	SetSolo(bool)
	SetMute(bool)
}

func Solo(n soloMuter, on bool) { n.SetSolo(on) }
func Mute(n soloMuter, on bool) { n.SetMute(on) }

// --- Effect factories (spec §4.3, §6) ---

func (s *System) CreateReverb(id string) *effect.Reverb         { return effect.NewReverb(newID(id)) }
func (s *System) CreateDelay(id string) *effect.Delay           { return effect.NewDelay(newID(id), s.Rate()) }
func (s *System) CreateCompressor(id string) *effect.Compressor { return effect.NewCompressor(newID(id), s.Rate()) }
func (s *System) CreateEQFilter(id string, kind dsp.Kind) *effect.EQFilter {
	return effect.NewEQFilter(newID(id), kind, s.Rate())
}

// effectHost is satisfied by *graph.Group and *graph.Bus.
type effectHost interface {
	AddEffect(effect.Effect)
	RemoveEffect(string) bool
	Effects() []effect.Effect
}

func AddEffect(n effectHost, e effect.Effect)            { n.AddEffect(e) }
func RemoveEffect(n effectHost, id string) bool          { return n.RemoveEffect(id) }

// paramUpdater is satisfied by every effect.Effect that embeds
// effect.Modulable (Reverb, Delay, Compressor, EQFilter).
type paramUpdater interface {
	UpdateParams(newParams map[string]float64, rampFrames int64)
}

// UpdateEffectParams ramps e's parameters to newParams over seconds
// (spec §4.3's update_params(new, time)); seconds<=0 is an instant jump.
func (s *System) UpdateEffectParams(e effect.Effect, newParams map[string]float64, seconds float64) error {
	u, ok := e.(paramUpdater)
	if !ok {
		return fmt.Errorf("mixengine: effect %q is not modulable", e.ID())
	}
	u.UpdateParams(newParams, secondsToFrames(seconds, s.Rate()))
	return nil
}

func secondsToFrames(seconds float64, rate int) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(seconds*float64(rate) + 0.5)
}

// --- Observation (spec §6: find_source, list_all_sources) ---

// FindSource walks every main bus and aux bus's groups looking for a
// source with the given id, so a group's source list remains the single
// source of truth rather than a second registry that removal must keep
// in sync.
func (s *System) FindSource(id string) (Source, bool) {
	for _, bus := range s.m.Buses() {
		if src, ok := findInBus(bus, id); ok {
			return src, true
		}
	}
	for _, bus := range s.m.AuxBuses() {
		if src, ok := findInBus(bus, id); ok {
			return src, true
		}
	}
	return nil, false
}

// auxBuses have no groups of their own in practice (spec §3: aux buses
// only host effects), but walking them costs nothing and keeps this
// correct if a caller wires groups onto one anyway.

func findInBus(bus *graph.Bus, id string) (Source, bool) {
	for _, g := range bus.Groups() {
		if src, ok := g.FindSource(id); ok {
			return src, true
		}
	}
	return nil, false
}

// ListAllSources walks the full bus→group→source graph and returns every
// source currently attached anywhere in it.
func (s *System) ListAllSources() []Source {
	var out []Source
	for _, bus := range s.m.Buses() {
		out = appendBusSources(out, bus)
	}
	for _, bus := range s.m.AuxBuses() {
		out = appendBusSources(out, bus)
	}
	return out
}

func appendBusSources(out []Source, bus *graph.Bus) []Source {
	for _, g := range bus.Groups() {
		out = append(out, g.Sources()...)
	}
	return out
}
