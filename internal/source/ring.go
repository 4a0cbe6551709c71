package source

// ringBuffer is a frame-indexed circular buffer of stereo float32 frames,
// generalizing the byte-oriented circular buffer pattern in
// other_examples/realtime-ai-realtime-ai__ring_buffer.go from raw PCM bytes
// to absolute-frame-indexed stereo audio so random-access reads can be
// expressed against the source's own cursor rather than a write offset.
type ringBuffer struct {
	left, right []float32
	capacity    int
	writePos    int
	fill        int
	anchor      int64 // absolute frame index of the oldest buffered frame
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		left:     make([]float32, capacity),
		right:    make([]float32, capacity),
		capacity: capacity,
	}
}

// append adds frames to the tail, evicting the oldest buffered frames (and
// advancing anchor) if they would overflow capacity.
func (r *ringBuffer) append(left, right []float32) {
	n := len(left)
	if n == 0 {
		return
	}

	if n >= r.capacity {
		copy(r.left, left[n-r.capacity:])
		copy(r.right, right[n-r.capacity:])
		r.writePos = 0
		r.fill = r.capacity
		r.anchor += int64(n) - int64(r.capacity)
		return
	}

	spaceToEnd := r.capacity - r.writePos
	if n <= spaceToEnd {
		copy(r.left[r.writePos:], left)
		copy(r.right[r.writePos:], right)
		r.writePos += n
		if r.writePos == r.capacity {
			r.writePos = 0
		}
	} else {
		copy(r.left[r.writePos:], left[:spaceToEnd])
		copy(r.right[r.writePos:], right[:spaceToEnd])
		copy(r.left, left[spaceToEnd:])
		copy(r.right, right[spaceToEnd:])
		r.writePos = n - spaceToEnd
	}

	r.fill += n
	if r.fill > r.capacity {
		r.anchor += int64(r.fill - r.capacity)
		r.fill = r.capacity
	}
}

// frameAt returns the frame at the given absolute frame index, or
// ok=false if it has already been evicted or not yet decoded.
func (r *ringBuffer) frameAt(idx int64) (left, right float32, ok bool) {
	if idx < r.anchor || idx >= r.anchor+int64(r.fill) {
		return 0, 0, false
	}
	offset := int(idx - r.anchor)
	oldestPos := r.writePos - r.fill
	for oldestPos < 0 {
		oldestPos += r.capacity
	}
	pos := (oldestPos + offset) % r.capacity
	return r.left[pos], r.right[pos], true
}

// frontier returns the absolute frame index one past the last buffered
// frame — the next frame a refill would append.
func (r *ringBuffer) frontier() int64 {
	return r.anchor + int64(r.fill)
}

func (r *ringBuffer) available() int { return r.fill }

// invalidate drops all buffered frames and resets the anchor to start
// fresh decoding from the given absolute frame index (used on seek/loop).
func (r *ringBuffer) invalidate(anchor int64) {
	r.anchor = anchor
	r.fill = 0
	r.writePos = 0
}
