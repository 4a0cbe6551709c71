package effect

// delayBufSize bounds the longest supported delay_time at any plausible
// engine rate (4 seconds at 192kHz).
const delayBufSize = 192000 * 4

// Delay implements the single-tap feedback delay from spec §4.3: the tap
// read each sample is the line's own prior output, so wet_level*feedback
// compounds into a decaying echo rather than a single reflection.
type Delay struct {
	Modulable
	id         string
	sampleRate int
	line       [2]ringLine
}

func NewDelay(id string, sampleRate int) *Delay {
	return &Delay{
		id:         id,
		sampleRate: sampleRate,
		Modulable: NewModulable(map[string]float64{
			"delay_time": 0.25,
			"feedback":   0.35,
			"wet_level":  0.4,
		}),
		line: [2]ringLine{newRingLine(delayBufSize), newRingLine(delayBufSize)},
	}
}

func (d *Delay) ID() string { return d.id }

func (d *Delay) Apply(channel int, block []float32) []float32 {
	if channel < 0 || channel > 1 {
		return block
	}
	wet := float32(d.Param("wet_level"))
	feedback := float32(d.Param("feedback"))
	delayFrames := int(d.Param("delay_time") * float64(d.sampleRate))
	if delayFrames < 1 {
		delayFrames = 1
	}
	if delayFrames >= delayBufSize {
		delayFrames = delayBufSize - 1
	}

	line := &d.line[channel]
	for i, x := range block {
		tapped := line.read(delayFrames)
		out := x + wet*feedback*tapped
		block[i] = out
		line.write(out)
	}
	return block
}

func (d *Delay) Reset() {
	d.line[0].reset()
	d.line[1].reset()
}
