package source

import (
	"io"

	"github.com/soundgraph/mixengine/internal/decode"
	"github.com/soundgraph/mixengine/internal/logging"
	"github.com/soundgraph/mixengine/internal/util"
)

const minCapacityPeriods = 8

// ringCapacity picks a ring size on the order of a second of audio at the
// device rate, but never less than 8 periods (spec §3's streaming-source
// invariant).
func ringCapacity(rate, period int) int {
	c := rate
	if c < period*minCapacityPeriods {
		c = period * minCapacityPeriods
	}
	return c
}

// Streaming is a disk-backed source reading through a decode.Handle into a
// chunked ring buffer (spec §3/§4.2).
type Streaming struct {
	base

	handle   decode.Handle
	channels int
	ring     *ringBuffer
	eof      bool

	scratch      []float32
	scratchLeft  []float32
	scratchRight []float32
}

// NewStreaming opens a streaming source over an already-open decode.Handle.
// length, if known (decode.Handle.FrameCount() > 0), sets the default loop
// end offset; otherwise it is learned lazily as decoding reaches EOF.
func NewStreaming(id string, engineRate, period int, h decode.Handle) *Streaming {
	length := float64(h.FrameCount())
	if length < 0 {
		length = 0
	}
	capacity := ringCapacity(engineRate, period)
	s := &Streaming{
		base:         newBase(id, engineRate, length),
		handle:       h,
		channels:     h.Channels(),
		ring:         newRingBuffer(capacity),
		scratch:      make([]float32, capacity*h.Channels()),
		scratchLeft:  make([]float32, capacity),
		scratchRight: make([]float32, capacity),
	}
	return s
}

func (s *Streaming) Play(fadeInSeconds float64)           { s.play(fadeInSeconds) }
func (s *Streaming) Resume(fadeInSeconds float64)         { s.resume(fadeInSeconds) }
func (s *Streaming) Pause(fadeOutSeconds float64)         { s.pause(fadeOutSeconds) }
func (s *Streaming) Stop(fadeOutSeconds float64)          { s.stop(fadeOutSeconds) }
func (s *Streaming) FadeIn(seconds float64)               { s.fadeIn(seconds) }
func (s *Streaming) FadeOut(seconds float64)              { s.fadeOut(seconds) }
func (s *Streaming) SetSpeed(x float64)                   { s.setSpeed(x) }
func (s *Streaming) SetVolume(v, fade float64)            { s.setVolume(v, fade) }
func (s *Streaming) SetLoop(on bool, start, end float64)  { s.setLoop(on, start, end) }
func (s *Streaming) Reset()                               { s.reset() }

// Seek repositions the read cursor, the decoder, and invalidates the ring
// buffer so the next refill starts decoding from the new position. Unlike
// spec §4.1's "may defer the decoder move to the next mix period," this
// implementation performs the reposition synchronously under the source
// mutex — the in-process decoders this engine wires (wav/mp3/vorbis/aiff)
// make that cheap enough not to need deferral.
func (s *Streaming) Seek(frame float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clamped := clamp(frame, s.startOffset, s.endOffset)
	s.cursor = clamped
	if err := s.handle.Seek(int64(clamped)); err != nil && err != decode.ErrSeekUnsupported {
		logging.Warn("source: seek failed", "source_id", s.id, "error", err)
	}
	s.ring.invalidate(int64(clamped))
	s.eof = false
}

// Mix fills left/right with period frames starting at the current cursor,
// refilling the ring as needed and handling end-of-stream per spec §4.2.
func (s *Streaming) Mix(left, right []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Playing {
		zero(left)
		zero(right)
		return
	}

	s.refillLocked()

	n := len(left)
	i := 0
	for i < n {
		l, r, ok := s.sampleAt(s.cursor)
		if ok {
			left[i] = l
			right[i] = r
			s.cursor += s.speed
			i++
			continue
		}

		if s.loop {
			s.cursor = s.startOffset
			if err := s.handle.Seek(int64(s.startOffset)); err != nil && err != decode.ErrSeekUnsupported {
				logging.Warn("source: loop seek failed", "source_id", s.id, "error", err)
			}
			s.ring.invalidate(int64(s.startOffset))
			s.eof = false
			s.refillLocked()
			continue
		}

		for ; i < n; i++ {
			left[i] = 0
			right[i] = 0
		}
		s.state = Stopped
		s.cursor = s.startOffset
		break
	}
}

// refillLocked requests more decoded frames when the buffered frontier
// ahead of the cursor drops below the low-water mark (spec §4.2). Caller
// must hold s.mu.
func (s *Streaming) refillLocked() {
	if s.eof {
		return
	}
	frontier := s.ring.frontier()
	cursorFrame := int64(s.cursor)
	available := frontier - cursorFrame
	lowWater := int64(s.ring.capacity) / 2
	if available >= lowWater {
		return
	}

	want := int64(s.ring.capacity) - available
	if want <= 0 {
		return
	}
	maxFrames := int64(len(s.scratch) / s.channels)
	if want > maxFrames {
		want = maxFrames
	}

	n, err := s.handle.Read(s.scratch[:want*int64(s.channels)])
	if err != nil && err != io.EOF {
		logging.Error("source: streaming decode error", "source_id", s.id, "error", err)
		s.state = Stopped
		return
	}

	for f := 0; f < n; f++ {
		frame := s.scratch[f*s.channels : (f+1)*s.channels]
		s.scratchLeft[f], s.scratchRight[f] = decode.DownmixFrame(frame)
	}
	if n > 0 {
		s.ring.append(s.scratchLeft[:n], s.scratchRight[:n])
	}
	if err == io.EOF {
		s.eof = true
		if s.endOffset <= 0 {
			s.endOffset = float64(s.ring.frontier())
		}
	}
}

func (s *Streaming) sampleAt(pos float64) (float32, float32, bool) {
	baseIdx := int64(pos)
	frac := float32(pos - float64(baseIdx))

	l1, r1, ok1 := s.ring.frameAt(baseIdx)
	if !ok1 {
		return 0, 0, false
	}
	l2, r2, ok2 := s.ring.frameAt(baseIdx + 1)
	if !ok2 {
		// Past the last decoded frame of a non-looping stream the next
		// point is silence, as it is for an in-memory source.
		if !s.eof || s.loop || baseIdx+1 != s.ring.frontier() {
			return 0, 0, false
		}
		l2, r2 = 0, 0
	}
	l0, r0, ok0 := s.ring.frameAt(baseIdx - 1)
	if !ok0 {
		l0, r0 = l1, r1
	}
	l3, r3, ok3 := s.ring.frameAt(baseIdx + 2)
	if !ok3 {
		l3, r3 = l2, r2
	}

	left := utils.CubicInterpolate(l0, l1, l2, l3, frac)
	right := utils.CubicInterpolate(r0, r1, r2, r3, frac)
	return left, right, true
}

func zero(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}
