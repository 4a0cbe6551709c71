package effect

// reverbBufSize must exceed the longest tap delay (3087 frames) so every
// tap can be read before the current sample overwrites it.
const reverbBufSize = 4096

var reverbTapDelays = [3]int{1323, 2205, 3087}

type ringLine struct {
	buf []float32
	pos int
}

func newRingLine(size int) ringLine {
	return ringLine{buf: make([]float32, size)}
}

func (r *ringLine) read(delay int) float32 {
	idx := r.pos - delay
	n := len(r.buf)
	for idx < 0 {
		idx += n
	}
	return r.buf[idx%n]
}

func (r *ringLine) write(x float32) {
	r.buf[r.pos] = x
	r.pos = (r.pos + 1) % len(r.buf)
}

func (r *ringLine) reset() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.pos = 0
}

// Reverb implements the fixed-tap comb reverb from spec §4.3. Per the §9
// redesign flag, its delay lines are persistent ring buffers carried across
// block boundaries rather than truncated at the block edge.
type Reverb struct {
	Modulable
	id    string
	lines [2]ringLine
}

// NewReverb constructs a reverb with default room_size/damping/wet/dry
// parameters and allocates its per-channel persistent delay lines.
func NewReverb(id string) *Reverb {
	return &Reverb{
		id: id,
		Modulable: NewModulable(map[string]float64{
			"room_size": 0.5,
			"damping":   0.5,
			"wet_level": 0.3,
			"dry_level": 1.0,
		}),
		lines: [2]ringLine{newRingLine(reverbBufSize), newRingLine(reverbBufSize)},
	}
}

func (r *Reverb) ID() string { return r.id }

func (r *Reverb) Apply(channel int, block []float32) []float32 {
	if channel < 0 || channel > 1 {
		return block
	}
	dry := float32(r.Param("dry_level"))
	wet := float32(r.Param("wet_level"))
	room := float32(r.Param("room_size"))
	damping := r.Param("damping")
	decay := [3]float32{
		float32(0.6 * (1 - damping)),
		float32(0.4 * (1 - damping)),
		float32(0.3 * (1 - damping)),
	}

	line := &r.lines[channel]
	for i, x := range block {
		var wetSum float32
		for k, d := range reverbTapDelays {
			wetSum += decay[k] * line.read(d)
		}
		block[i] = dry*x + wet*wetSum*room
		line.write(x)
	}
	return block
}

// Reset clears both channels' delay-line history. Removing the effect from
// a node does not call it; the history persists until Reset is called.
func (r *Reverb) Reset() {
	r.lines[0].reset()
	r.lines[1].reset()
}
