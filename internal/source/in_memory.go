package source

import "github.com/soundgraph/mixengine/internal/util"

// InMemory is a source holding the full decoded, downmixed, peak-normalized
// signal in a fixed-length stereo buffer (spec §3's "In-memory source").
type InMemory struct {
	base
	data [2][]float32 // left, right
}

// NewInMemory wraps a pre-decoded stereo signal. data must already be
// downmixed to at most two channels (internal/decode.StereoDownmix) and
// peak-normalized if needed (internal/decode.PeakNormalize); both are
// load-time concerns the control surface performs before construction.
func NewInMemory(id string, rate int, left, right []float32) *InMemory {
	length := float64(len(left))
	s := &InMemory{base: newBase(id, rate, length)}
	s.data[0] = left
	s.data[1] = right
	return s
}

func (s *InMemory) Seek(frame float64) {
	s.seekClamp(frame)
}

func (s *InMemory) Play(fadeInSeconds float64)    { s.play(fadeInSeconds) }
func (s *InMemory) Resume(fadeInSeconds float64)  { s.resume(fadeInSeconds) }
func (s *InMemory) Pause(fadeOutSeconds float64)  { s.pause(fadeOutSeconds) }
func (s *InMemory) Stop(fadeOutSeconds float64)   { s.stop(fadeOutSeconds) }
func (s *InMemory) FadeIn(seconds float64)        { s.fadeIn(seconds) }
func (s *InMemory) FadeOut(seconds float64)       { s.fadeOut(seconds) }
func (s *InMemory) SetSpeed(x float64)            { s.setSpeed(x) }
func (s *InMemory) SetVolume(v, fade float64)     { s.setVolume(v, fade) }
func (s *InMemory) SetLoop(on bool, start, end float64) { s.setLoop(on, start, end) }
func (s *InMemory) Reset()                        { s.reset() }

// Mix fills left and right (each exactly period frames long) with this
// source's samples at its current fractional cursor/speed and advances the
// cursor by period*speed frames (spec §4.4's per-source mix step). Samples
// are not scaled by source volume here — the caller (internal/mixer) does
// that when summing into the owning group's scratch.
func (s *InMemory) Mix(left, right []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range left {
		left[i] = s.sampleAt(0, s.cursor)
		right[i] = s.sampleAt(1, s.cursor)
		s.cursor += s.speed
		if s.loop && s.endOffset > s.startOffset && s.cursor >= s.endOffset {
			span := s.endOffset - s.startOffset
			s.cursor = s.startOffset + mod(s.cursor-s.startOffset, span)
		}
	}
}

func mod(a, m float64) float64 {
	r := a - float64(int64(a/m))*m
	if r < 0 {
		r += m
	}
	return r
}

// sampleAt cubic-interpolates the four samples surrounding the fractional
// frame position pos on the given channel, returning 0 outside the buffer.
func (s *InMemory) sampleAt(ch int, pos float64) float32 {
	data := s.data[ch]
	n := int64(len(data))
	if n == 0 {
		return 0
	}
	base := int64(pos)
	frac := float32(pos - float64(base))

	get := func(idx int64) float32 {
		if s.loop && s.endOffset > s.startOffset {
			span := int64(s.endOffset - s.startOffset)
			start := int64(s.startOffset)
			idx = start + ((idx-start)%span+span)%span
		}
		if idx < 0 || idx >= n {
			return 0
		}
		return data[idx]
	}

	y0 := get(base - 1)
	y1 := get(base)
	y2 := get(base + 1)
	y3 := get(base + 2)
	return utils.CubicInterpolate(y0, y1, y2, y3, frac)
}
