package graph

// Group is an ordered collection of sources sharing a volume, a fade, an
// effect chain, and solo/mute flags (spec §3).
type Group struct {
	Node
	sources []Source
}

func NewGroup(id string) *Group {
	return &Group{Node: newNode(id)}
}

func (g *Group) AddSource(s Source) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sources = append(g.sources, s)
}

func (g *Group) RemoveSource(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, s := range g.sources {
		if s.ID() == id {
			g.sources = append(g.sources[:i], g.sources[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Group) Sources() []Source {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Source, len(g.sources))
	copy(out, g.sources)
	return out
}

func (g *Group) FindSource(id string) (Source, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range g.sources {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}
