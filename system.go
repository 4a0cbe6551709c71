// SPDX-License-Identifier: EPL-2.0

package mixengine

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/soundgraph/mixengine/internal/decode"
	_ "github.com/soundgraph/mixengine/internal/formats"
	"github.com/soundgraph/mixengine/internal/device"
	"github.com/soundgraph/mixengine/internal/graph"
	"github.com/soundgraph/mixengine/internal/mixer"
	"github.com/soundgraph/mixengine/internal/source"
)

// Source is the frame-producing contract a group holds (spec §2 item 1):
// implemented by *source.InMemory and *source.Streaming.
type Source = graph.Source

// State re-exports the playback state enumeration (spec §3) for callers
// that inspect Source.State().
type State = source.PlaybackState

const (
	Stopped = source.Stopped
	Playing = source.Playing
	Paused  = source.Paused
)

// Config constructs a System (spec §6's `system(sample_rate, period,
// input_device, output_device)`). OutputDevice, when nil, is opened as a
// real ebitengine/oto stream at SampleRate; supply a device.Stream
// (typically audiotest.CapturingStream) to run without real audio
// hardware. This package refers to device.NewOtoStream, so it does not
// build with the headless tag, under which that function is absent.
type Config struct {
	SampleRate   int
	Period       int
	OutputDevice device.Stream
	QueueDepth   int
}

// System is the owning aggregate (spec §2 item 9), wrapping the internal
// block engine with the public control surface (spec §6).
type System struct {
	m        *mixer.System
	registry *decode.Registry
}

// New constructs a FRESH system. If cfg.OutputDevice is nil, a real
// oto-backed output stream is opened at cfg.SampleRate.
func New(cfg Config) (*System, error) {
	out := cfg.OutputDevice
	if out == nil {
		stream, err := device.NewOtoStream(cfg.SampleRate)
		if err != nil {
			return nil, audioError("opening output device", err)
		}
		out = stream
	}
	return &System{
		m: mixer.New(mixer.Config{
			SampleRate: cfg.SampleRate,
			Period:     cfg.Period,
			Device:     out,
			QueueDepth: cfg.QueueDepth,
		}),
		registry: decode.Default(),
	}, nil
}

func (s *System) Rate() int   { return s.m.Rate() }
func (s *System) Period() int { return s.m.Period() }

func (s *System) Start() error { return s.m.Start() }
func (s *System) Stop() error  { return s.m.Stop() }
func (s *System) Close() error { return s.m.Close() }

func (s *System) MasterVolume() float64        { return s.m.MasterVolume() }
func (s *System) SetMasterVolume(v float64)    { s.m.SetMasterVolume(v) }
func (s *System) SetLimiter(enabled bool, threshold float64) {
	s.m.SetLimiter(enabled, threshold)
}

func (s *System) GetMetrics() mixer.Snapshot { return s.m.GetMetrics() }
func (s *System) ResetMetrics()              { s.m.ResetMetrics() }

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// LoadAudio opens path, decodes by extension, and returns either an
// in-memory source (decode fully, downmix to ≤2 channels, peak-normalize
// if the loaded peak exceeded 1.0) or, when stream is true, a disk-backed
// streaming source reading through a chunked ring buffer (spec §4.1, §6).
func (s *System) LoadAudio(path string, id string, stream bool) (Source, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	dec, ok := s.registry.Get(ext)
	if !ok {
		return nil, unsupportedFormatError(ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fileNotFoundError(path, err)
	}

	if stream {
		h, err := dec.Open(f)
		if err != nil {
			f.Close()
			return nil, audioError("opening streaming handle for "+path, err)
		}
		if h.SampleRate() != s.Rate() {
			h.Close()
			f.Close()
			return nil, audioError("source rate does not match engine rate (sample-rate conversion is out of scope)", nil)
		}
		return source.NewStreaming(newID(id), s.Rate(), s.Period(), h), nil
	}

	defer f.Close()
	h, err := dec.Open(f)
	if err != nil {
		return nil, audioError("decoding "+path, err)
	}
	defer h.Close()
	if h.SampleRate() != s.Rate() {
		return nil, audioError("source rate does not match engine rate (sample-rate conversion is out of scope)", nil)
	}

	data, _, err := decode.LoadFull(h)
	if err != nil {
		return nil, audioError("decoding "+path, err)
	}
	data = decode.StereoDownmix(data)
	decode.PeakNormalize(data)

	left, right := data[0], data[0]
	if len(data) > 1 {
		right = data[1]
	}
	return source.NewInMemory(newID(id), s.Rate(), left, right), nil
}

// GenerateSineWave synthesizes an in-memory sine source at the engine's
// rate (spec §6's generate_sine_wave; the engine-rate assumption means no
// separate source rate parameter is offered, consistent with sample-rate
// conversion being a Non-goal).
func (s *System) GenerateSineWave(id string, frequency, durationSeconds, amplitude float64) *source.InMemory {
	frames := int(durationSeconds*float64(s.Rate()) + 0.5)
	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(s.Rate())
		v := float32(amplitude * math.Sin(2*math.Pi*frequency*t))
		left[i], right[i] = v, v
	}
	return source.NewInMemory(newID(id), s.Rate(), left, right)
}

// GenerateWhiteNoise synthesizes an in-memory uniform white noise source
// (spec §6's generate_white_noise).
func (s *System) GenerateWhiteNoise(id string, durationSeconds, amplitude float64) *source.InMemory {
	frames := int(durationSeconds*float64(s.Rate()) + 0.5)
	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left[i] = float32(amplitude * (rand.Float64()*2 - 1))
		right[i] = float32(amplitude * (rand.Float64()*2 - 1))
	}
	return source.NewInMemory(newID(id), s.Rate(), left, right)
}
