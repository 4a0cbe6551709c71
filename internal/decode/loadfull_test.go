package decode

import "testing"

func TestDownmixFrame_MonoAndStereoPassThrough(t *testing.T) {
	t.Parallel()

	if l, r := DownmixFrame([]float32{0.5}); l != 0.5 || r != 0.5 {
		t.Fatalf("mono frame = (%v, %v), want (0.5, 0.5)", l, r)
	}
	if l, r := DownmixFrame([]float32{0.2, 0.8}); l != 0.2 || r != 0.8 {
		t.Fatalf("stereo frame = (%v, %v), want (0.2, 0.8)", l, r)
	}
}

func TestDownmixFrame_MatchesStereoDownmixOnFullBuffer(t *testing.T) {
	t.Parallel()

	// 4 channels (e.g. quad): [0,1] average into left, [2,3] into right.
	data := [][]float32{
		{1.0, 0.0},
		{0.0, 1.0},
		{0.6, 0.4},
		{0.2, 0.8},
	}
	want := StereoDownmix(data)

	for i := range data[0] {
		frame := []float32{data[0][i], data[1][i], data[2][i], data[3][i]}
		l, r := DownmixFrame(frame)
		if l != want[0][i] || r != want[1][i] {
			t.Fatalf("frame %d DownmixFrame = (%v, %v), StereoDownmix = (%v, %v)",
				i, l, r, want[0][i], want[1][i])
		}
	}
}

func TestDownmixFrame_OddChannelCountJoinsMiddleToLeft(t *testing.T) {
	t.Parallel()

	// 3 channels: half=1, odd -> leftCount=2 (ch0, ch1), rightCount=1 (ch2).
	l, r := DownmixFrame([]float32{1.0, 1.0, 0.5})
	if l != 1.0 {
		t.Fatalf("left = %v, want 1.0 (avg of ch0,ch1)", l)
	}
	if r != 0.5 {
		t.Fatalf("right = %v, want 0.5 (ch2 alone)", r)
	}
}
