package video

import (
	"math"
	"time"
)

// TicksPerSecond is the timestamp resolution used by the transport.
const TicksPerSecond int64 = 10_000_000

// Rate represents a frame rate as numerator/denominator.
type Rate struct {
	Num int
	Den int
}

// NewRate creates a new frame rate
func NewRate(num, den int) Rate {
	if den == 0 {
		den = 1
	}
	return Rate{Num: num, Den: den}
}

// Common frame rates
var (
	FrameRate25 = Rate{Num: 25, Den: 1}
	FrameRate30 = Rate{Num: 30, Den: 1}
	FrameRate50 = Rate{Num: 50, Den: 1}
	FrameRate60 = Rate{Num: 60, Den: 1}

	FrameRate29_97 = Rate{Num: 30000, Den: 1001}
	FrameRate59_94 = Rate{Num: 60000, Den: 1001}
)

// Float64 returns the frames per second
func (r Rate) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Period returns the nominal duration of one frame.
func (r Rate) Period() time.Duration {
	if r.Num <= 0 {
		return 0
	}
	return time.Duration(int64(time.Second) * int64(r.Den) / int64(r.Num))
}

// TicksPerFrame returns ⌊10⁷·den/num⌋.
func (r Rate) TicksPerFrame() int64 {
	if r.Num <= 0 {
		return 0
	}
	return TicksPerSecond * int64(r.Den) / int64(r.Num)
}

// FramesIn returns how many whole frames fit in d: ⌊d·num/den⌋.
func (r Rate) FramesIn(d time.Duration) int64 {
	if r.Den <= 0 || d <= 0 {
		return 0
	}
	return int64(d) * int64(r.Num) / (int64(r.Den) * int64(time.Second))
}

// WholeFramesPerSecond returns ⌊num/den⌋, at least 1.
func (r Rate) WholeFramesPerSecond() int64 {
	if r.Den <= 0 || r.Num < r.Den {
		return 1
	}
	return int64(r.Num / r.Den)
}

// Timestamp returns the timestamp of frame index i, saturating at
// math.MaxInt64 instead of wrapping.
func Timestamp(i, ticksPerFrame int64) int64 {
	if i <= 0 || ticksPerFrame <= 0 {
		return 0
	}
	if i > math.MaxInt64/ticksPerFrame {
		return math.MaxInt64
	}
	return i * ticksPerFrame
}
