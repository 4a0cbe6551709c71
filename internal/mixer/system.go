package mixer

import (
	"errors"
	"sync"
	"time"

	"github.com/soundgraph/mixengine/internal/device"
	"github.com/soundgraph/mixengine/internal/graph"
	"github.com/soundgraph/mixengine/internal/logging"
)

// ErrClosed is returned by any lifecycle call on a CLOSED system; CLOSED
// is terminal (spec §4.6).
var ErrClosed = errors.New("mixer: system is closed")

// Config constructs a System (spec §3's "System-wide" fields, minus the
// fields that are runtime state rather than configuration).
type Config struct {
	SampleRate int
	Period     int
	Device     device.Stream
	QueueDepth int
}

// System is the owning aggregate from spec §2 item 9: device stream,
// buses, aux-bus registry, preallocated scratch buffers, handoff queue,
// master volume, limiter settings, metrics, and the running flag
// governing both worker loops.
type System struct {
	rate   int
	period int

	mu    sync.Mutex
	state SystemState

	masterVolumeMu sync.Mutex
	masterVolume   float64

	registry *busRegistry
	engine   *mixEngine

	limiterMu sync.Mutex
	limiter   Limiter

	metrics Metrics

	queue chan *Block
	pool  *blockPool

	device device.Stream

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New constructs a FRESH system. The handoff queue, block pool and mix
// scratch buffers are allocated here, once, per spec §3's "preallocated"
// requirement; the device stream is the one supplied in cfg.Device.
func New(cfg Config) *System {
	return &System{
		rate:         cfg.SampleRate,
		period:       cfg.Period,
		masterVolume: 1.0,
		registry:     newBusRegistry(),
		engine:       newMixEngine(cfg.Period),
		queue:        newHandoffQueue(cfg.QueueDepth),
		pool:         newBlockPool(cfg.Period),
		device:       cfg.Device,
	}
}

func (s *System) Rate() int   { return s.rate }
func (s *System) Period() int { return s.period }
func (s *System) State() SystemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *System) MasterVolume() float64 {
	s.masterVolumeMu.Lock()
	defer s.masterVolumeMu.Unlock()
	return s.masterVolume
}

func (s *System) SetMasterVolume(v float64) {
	v = clampVolume(v)
	s.masterVolumeMu.Lock()
	defer s.masterVolumeMu.Unlock()
	s.masterVolume = v
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 2 {
		return 2
	}
	return v
}

func (s *System) SetLimiter(enabled bool, threshold float64) {
	if threshold <= 0 {
		threshold = 1
	}
	if threshold > 1 {
		threshold = 1
	}
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	s.limiter = Limiter{Enabled: enabled, Threshold: threshold}
}

func (s *System) getLimiter() Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	return s.limiter
}

func (s *System) GetMetrics() Snapshot { return s.metrics.Snapshot() }
func (s *System) ResetMetrics()        { s.metrics.Reset() }

func (s *System) AddBus(b *graph.Bus)            { s.registry.AddBus(b) }
func (s *System) RemoveBus(id string) bool       { return s.registry.RemoveBus(id) }
func (s *System) FindBus(id string) (*graph.Bus, bool) { return s.registry.FindBus(id) }
func (s *System) Buses() []*graph.Bus            { return s.registry.Buses() }

func (s *System) AddAuxBus(id string, b *graph.Bus)       { s.registry.AddAuxBus(id, b) }
func (s *System) RemoveAuxBus(id string) bool             { return s.registry.RemoveAuxBus(id) }
func (s *System) FindAuxBus(id string) (*graph.Bus, bool) { return s.registry.FindAuxBus(id) }
func (s *System) AuxBuses() map[string]*graph.Bus          { return s.registry.AuxBuses() }

// Start transitions FRESH or PAUSED into RUNNING, spawning fresh mixer
// and output-pump goroutines (spec §4.6).
func (s *System) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Closed:
		return ErrClosed
	case Running:
		return nil
	}
	s.stopCh = make(chan struct{})
	s.wg.Add(2)
	go s.runMixer(s.stopCh)
	go s.runOutputPump(s.stopCh)
	s.state = Running
	return nil
}

// Stop transitions RUNNING to PAUSED: clears the running flag and waits
// for both workers to exit before returning (spec §4.6, §5's synchronous
// close semantics apply equally here since Stop is the building block
// Close uses).
func (s *System) Stop() error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != Running {
		s.mu.Unlock()
		return nil
	}
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	s.state = Paused
	s.mu.Unlock()
	return nil
}

// Close stops the system if running, releases the device stream, and
// enters CLOSED — irreversible (spec §4.6).
func (s *System) Close() error {
	s.mu.Lock()
	already := s.state == Closed
	s.mu.Unlock()
	if already {
		return nil
	}
	if err := s.Stop(); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	s.mu.Lock()
	s.state = Closed
	s.mu.Unlock()
	if s.device != nil {
		return s.device.Close()
	}
	return nil
}

func (s *System) periodDuration() time.Duration {
	return time.Duration(s.period) * time.Second / time.Duration(s.rate)
}

// runMixer is the tight block-producing loop from spec §5: one block per
// iteration, timing itself for CPU-usage accounting, suspending on a full
// handoff queue (natural backpressure).
func (s *System) runMixer(stop chan struct{}) {
	defer s.wg.Done()
	periodDur := s.periodDuration()

	for {
		select {
		case <-stop:
			return
		default:
		}

		block := s.pool.get()
		start := time.Now()
		preLimiterPeak := s.engine.mixPeriod(s.Buses(), s.AuxBuses(), s.MasterVolume(), block.Data)
		lim := s.getLimiter()
		lim.Apply(block.Data)
		mixTime := time.Since(start)
		s.metrics.update(block.Data, preLimiterPeak, mixTime, periodDur)

		select {
		case s.queue <- block:
		case <-stop:
			s.pool.put(block)
			return
		}
	}
}

// runOutputPump is the single-consumer loop from spec §4.5: drains the
// handoff queue and writes to the device stream, counting underruns on
// transient write failure without retrying the dropped block.
func (s *System) runOutputPump(stop chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case <-stop:
			return
		case block := <-s.queue:
			if err := s.device.Write(block.Data); err != nil {
				s.metrics.recordUnderrun()
				logging.Warn("mixer: output write failed", "error", err)
			}
			s.pool.put(block)
		}
	}
}
