package mixer

import (
	"sync"
	"sync/atomic"

	"github.com/soundgraph/mixengine/internal/graph"
)

// busRegistry holds the system's main-bus list and aux-bus map under
// copy-on-write snapshots (spec §3: "vector of main buses; map of aux
// buses by identifier"). Structural changes (add/remove) are rare control
// calls serialized by mu; the mixer's per-period read is a single atomic
// load of the current snapshot, so the hot path never blocks on or
// allocates for bus-list access (spec §8 #2), matching §5's "dynamic
// graph reshaping is not lock-free, but reads off the hot path are".
type busRegistry struct {
	mu  sync.Mutex
	main atomic.Pointer[[]*graph.Bus]
	aux  atomic.Pointer[map[string]*graph.Bus]
}

func newBusRegistry() *busRegistry {
	r := &busRegistry{}
	main := []*graph.Bus{}
	r.main.Store(&main)
	aux := map[string]*graph.Bus{}
	r.aux.Store(&aux)
	return r
}

func (r *busRegistry) Buses() []*graph.Bus {
	return *r.main.Load()
}

func (r *busRegistry) AuxBuses() map[string]*graph.Bus {
	return *r.aux.Load()
}

func (r *busRegistry) AddBus(b *graph.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.main.Load()
	next := make([]*graph.Bus, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = b
	r.main.Store(&next)
}

func (r *busRegistry) RemoveBus(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.main.Load()
	idx := -1
	for i, b := range cur {
		if b.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	next := make([]*graph.Bus, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	r.main.Store(&next)
	return true
}

func (r *busRegistry) FindBus(id string) (*graph.Bus, bool) {
	for _, b := range r.Buses() {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

func (r *busRegistry) AddAuxBus(id string, b *graph.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.aux.Load()
	next := make(map[string]*graph.Bus, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[id] = b
	r.aux.Store(&next)
}

func (r *busRegistry) RemoveAuxBus(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.aux.Load()
	if _, ok := cur[id]; !ok {
		return false
	}
	next := make(map[string]*graph.Bus, len(cur))
	for k, v := range cur {
		if k != id {
			next[k] = v
		}
	}
	r.aux.Store(&next)
	return true
}

func (r *busRegistry) FindAuxBus(id string) (*graph.Bus, bool) {
	b, ok := (*r.aux.Load())[id]
	return b, ok
}
