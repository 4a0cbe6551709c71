package source

import (
	"math"
	"sync"

	"github.com/soundgraph/mixengine/internal/util"
)

// base holds the fields and control-plane operations common to every
// source variant (spec §3's "Source (common attributes)"), guarded by a
// single per-source mutex taken exactly once per public call — the
// idiomatic-Go substitute for the reentrant mutex spec §5 describes
// (SPEC_FULL.md §4).
type base struct {
	mu sync.Mutex

	id   string
	rate int

	state  PlaybackState
	cursor float64 // fractional frame position
	speed  float64

	volume        float64 // current, possibly mid-ramp
	desiredVolume float64 // last value passed to setVolume
	fadeFrom      float64
	rampTo        float64
	ramp          utils.Ramp

	pending            bool
	pendingState       PlaybackState
	pendingResetCursor bool

	loop        bool
	startOffset float64
	endOffset   float64
}

func newBase(id string, rate int, length float64) base {
	return base{
		id:            id,
		rate:          rate,
		speed:         1.0,
		volume:        1.0,
		desiredVolume: 1.0,
		rampTo:        1.0,
		endOffset:     length,
	}
}

func secondsToFrames(seconds float64, rate int) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(math.Round(seconds * float64(rate)))
}

func (b *base) ID() string { return b.id }

func (b *base) State() PlaybackState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *base) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

// AdvanceFade moves the source's volume ramp forward by periodFrames and,
// if a pause/stop fade-out just completed, performs the deferred state
// transition (spec §4.1: pause/stop "upon ramp completion").
func (b *base) AdvanceFade(periodFrames int64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ramp.Done() {
		t, done := b.ramp.Advance(periodFrames)
		if done {
			b.volume = b.rampTo
		} else {
			b.volume = utils.Lerp(b.fadeFrom, b.rampTo, t)
		}
		if done && b.pending {
			b.state = b.pendingState
			if b.pendingResetCursor {
				b.cursor = b.startOffset
			}
			b.pending = false
		}
	}
	return b.volume
}

func (b *base) play(fadeInSeconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Playing
	b.cursor = b.startOffset
	b.pending = false
	if fadeInSeconds > 0 {
		b.fadeFrom = 0
		b.volume = 0
		b.rampTo = b.desiredVolume
		b.ramp = utils.NewRamp(secondsToFrames(fadeInSeconds, b.rate))
	} else {
		b.volume = b.desiredVolume
		b.rampTo = b.desiredVolume
		b.ramp = utils.Ramp{}
	}
}

func (b *base) resume(fadeInSeconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Playing
	b.pending = false
	if fadeInSeconds > 0 {
		b.fadeFrom = b.volume
		b.rampTo = b.desiredVolume
		b.ramp = utils.NewRamp(secondsToFrames(fadeInSeconds, b.rate))
	} else {
		b.volume = b.desiredVolume
		b.rampTo = b.desiredVolume
		b.ramp = utils.Ramp{}
	}
}

func (b *base) pause(fadeOutSeconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fadeOutSeconds <= 0 {
		b.state = Paused
		b.pending = false
		return
	}
	b.fadeFrom = b.volume
	b.rampTo = 0
	b.ramp = utils.NewRamp(secondsToFrames(fadeOutSeconds, b.rate))
	b.pending = true
	b.pendingState = Paused
	b.pendingResetCursor = false
}

// stop with no fade stops at once and resets the cursor; with a fade, the
// transition to Stopped and the cursor reset happen when the ramp completes.
func (b *base) stop(fadeOutSeconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fadeOutSeconds <= 0 {
		b.state = Stopped
		b.cursor = b.startOffset
		b.pending = false
		return
	}
	b.fadeFrom = b.volume
	b.rampTo = 0
	b.ramp = utils.NewRamp(secondsToFrames(fadeOutSeconds, b.rate))
	b.pending = true
	b.pendingState = Stopped
	b.pendingResetCursor = true
}

func (b *base) fadeIn(seconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fadeFrom = b.volume
	b.rampTo = b.desiredVolume
	b.ramp = utils.NewRamp(secondsToFrames(seconds, b.rate))
}

func (b *base) fadeOut(seconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fadeFrom = b.volume
	b.rampTo = 0
	b.ramp = utils.NewRamp(secondsToFrames(seconds, b.rate))
}

func (b *base) setSpeed(x float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = clamp(x, MinSpeed, MaxSpeed)
}

func (b *base) getSpeed() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

func (b *base) setVolume(v, fadeSeconds float64) {
	v = clamp(v, MinVolume, MaxVolume)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.desiredVolume = v
	if fadeSeconds <= 0 {
		b.volume = v
		b.rampTo = v
		b.ramp = utils.Ramp{}
		return
	}
	b.fadeFrom = b.volume
	b.rampTo = v
	b.ramp = utils.NewRamp(secondsToFrames(fadeSeconds, b.rate))
}

func (b *base) setLoop(on bool, start, end float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loop = on
	b.startOffset = start
	if end > 0 {
		b.endOffset = end
	}
}

// seekClamp clamps frame to [startOffset, endOffset] and sets the cursor.
// It returns the clamped value so streaming sources can reposition their
// decoder/ring buffer to match.
func (b *base) seekClamp(frame float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	frame = clamp(frame, b.startOffset, b.endOffset)
	b.cursor = frame
	return frame
}

func (b *base) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Stopped
	b.cursor = b.startOffset
	b.volume = b.desiredVolume
	b.rampTo = b.desiredVolume
	b.ramp = utils.Ramp{}
	b.pending = false
}
