package graph

// Bus is an ordered collection of groups that sums into a single stereo
// stream, plus a set of aux-bus sends (spec §3). AuxBus is not a distinct
// type: a *Bus is reused structurally for aux buses — the owning system
// distinguishes them only by which collection it stores them in (main
// buses in order, aux buses by name), since both need the same
// volume/fade/effect-chain/solo/mute/group-summing behavior.
type Bus struct {
	Node
	groups []*Group
	sends  map[string]float64
}

func NewBus(id string) *Bus {
	return &Bus{Node: newNode(id), sends: make(map[string]float64)}
}

func (b *Bus) AddGroup(g *Group) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups = append(b.groups, g)
}

func (b *Bus) RemoveGroup(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range b.groups {
		if g.ID() == id {
			b.groups = append(b.groups[:i], b.groups[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Bus) Groups() []*Group {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Group, len(b.groups))
	copy(out, b.groups)
	return out
}

func (b *Bus) FindGroup(id string) (*Group, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, g := range b.groups {
		if g.ID() == id {
			return g, true
		}
	}
	return nil, false
}

// SetSend sets this bus's send level to the aux bus identified by auxID,
// clamped to [0,1] (spec §3's aux-send range).
func (b *Bus) SetSend(auxID string, level float64) {
	level = clamp(level, 0, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sends[auxID] = level
}

func (b *Bus) RemoveSend(auxID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sends, auxID)
}

func (b *Bus) Sends() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.sends))
	for k, v := range b.sends {
		out[k] = v
	}
	return out
}
