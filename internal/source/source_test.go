package source

import (
	"testing"

	"github.com/soundgraph/mixengine/internal/audiotest"
)

func TestInMemory_PlayThenStopResetsCursor(t *testing.T) {
	t.Parallel()

	left := make([]float32, 100)
	right := make([]float32, 100)
	for i := range left {
		left[i], right[i] = float32(i), float32(i)
	}

	s := NewInMemory("s1", 1000, left, right)
	s.Play(0)
	if s.State() != Playing {
		t.Fatalf("state = %v, want Playing", s.State())
	}

	buf := make([]float32, 10)
	buf2 := make([]float32, 10)
	s.Mix(buf, buf2)
	if buf[0] != 0 {
		t.Fatalf("first mixed sample = %v, want 0 (sample at frame 0)", buf[0])
	}

	s.Stop(0)
	if s.State() != Stopped {
		t.Fatalf("state = %v, want Stopped", s.State())
	}
}

func TestInMemory_SeekClampsToRange(t *testing.T) {
	t.Parallel()

	left := make([]float32, 100)
	right := make([]float32, 100)
	s := NewInMemory("s1", 1000, left, right)
	s.setLoop(false, 10, 90)

	s.Seek(-5)
	if s.base.cursor != 10 {
		t.Fatalf("cursor = %v, want clamped to start offset 10", s.base.cursor)
	}

	s.Seek(1000)
	if s.base.cursor != 90 {
		t.Fatalf("cursor = %v, want clamped to end offset 90", s.base.cursor)
	}
}

func TestInMemory_SpeedOneIsExactPassthrough(t *testing.T) {
	t.Parallel()

	n := 50
	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		left[i] = float32(i) * 0.01
		right[i] = float32(i) * 0.02
	}

	s := NewInMemory("s1", 1000, left, right)
	s.Play(0)

	outL := make([]float32, n)
	outR := make([]float32, n)
	s.Mix(outL, outR)

	for i := range outL {
		if diff := outL[i] - left[i]; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("frame %d: got %v, want %v (speed=1 must be exact passthrough)", i, outL[i], left[i])
		}
	}
}

func TestInMemory_FadeOutIsMonotonicAndReachesZero(t *testing.T) {
	t.Parallel()

	left := make([]float32, 10)
	right := make([]float32, 10)
	s := NewInMemory("s1", 1000, left, right)
	s.Play(0)
	s.Stop(0.01) // 10 frames at rate 1000

	prev := s.Volume()
	for i := 0; i < 11; i++ {
		v := s.AdvanceFade(1)
		if v > prev {
			t.Fatalf("fade volume increased: %v -> %v at step %d", prev, v, i)
		}
		prev = v
	}
	if prev != 0 {
		t.Fatalf("final fade-out volume = %v, want exactly 0", prev)
	}
	if s.State() != Stopped {
		t.Fatalf("state after fade-out completion = %v, want Stopped", s.State())
	}
}

func TestStreaming_MatchesInMemoryAtSpeedOne(t *testing.T) {
	t.Parallel()

	const frames = 200
	h := audiotest.NewSineHandle(1000, 2, frames, 50, 0.4)

	data, rate, err := loadAllForTest(h)
	if err != nil {
		t.Fatalf("loading reference signal: %v", err)
	}
	_ = rate

	h2 := audiotest.NewSineHandle(1000, 2, frames, 50, 0.4)
	streaming := NewStreaming("stream1", 1000, 16, h2)
	streaming.Play(0)

	inMemory := NewInMemory("mem1", 1000, data[0], data[1])
	inMemory.Play(0)

	const period = 16
	for block := 0; block < frames/period; block++ {
		sl, sr := make([]float32, period), make([]float32, period)
		ml, mr := make([]float32, period), make([]float32, period)
		streaming.Mix(sl, sr)
		inMemory.Mix(ml, mr)
		for i := range sl {
			if diff := sl[i] - ml[i]; diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("block %d frame %d: streaming=%v in-memory=%v", block, i, sl[i], ml[i])
			}
		}
	}
}

func loadAllForTest(h *audiotest.MockHandle) ([2][]float32, int, error) {
	var data [2][]float32
	buf := make([]float32, 64*2)
	for {
		n, err := h.Read(buf)
		for f := 0; f < n; f++ {
			data[0] = append(data[0], buf[f*2])
			data[1] = append(data[1], buf[f*2+1])
		}
		if err != nil {
			break
		}
	}
	h.Reset()
	return data, h.SampleRate(), nil
}

func TestStreaming_EndOfStreamStopsWhenNotLooping(t *testing.T) {
	t.Parallel()

	h := audiotest.NewSilentHandle(1000, 2, 20)
	s := NewStreaming("s1", 1000, 16, h)
	s.Play(0)

	buf1, buf2 := make([]float32, 16), make([]float32, 16)
	s.Mix(buf1, buf2) // consumes frames 0-15
	if s.State() != Playing {
		t.Fatalf("state after first block = %v, want Playing", s.State())
	}

	s.Mix(buf1, buf2) // should exhaust at frame 20 and zero-fill+stop
	if s.State() != Stopped {
		t.Fatalf("state after exhausting stream = %v, want Stopped", s.State())
	}
}
