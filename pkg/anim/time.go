// Package anim defines the animation time model: tick-based time points,
// validity intervals and animation controllers.
//
// Time is measured in discrete ticks (4800 per second) so that frame
// arithmetic is exact. An Interval is a closed range of ticks; the two
// sentinel intervals Never (empty) and Forever (unbounded) form the
// absorbing and identity elements of Intersect.
package anim

import (
	"fmt"
	"math"
)

// Time is a point on the animation time axis, in ticks.
type Time int64

// TicksPerSecond is the resolution of the time axis.
const TicksPerSecond = 4800

// TicksPerFrame is the default frame length used when a scene does not
// declare a frame rate (10 frames per second).
const TicksPerFrame Time = TicksPerSecond / 10

const (
	// TimeNegativeInfinity is the smallest representable time value.
	TimeNegativeInfinity Time = math.MinInt64

	// TimePositiveInfinity is the largest representable time value.
	TimePositiveInfinity Time = math.MaxInt64
)

// SecondsToTime converts wall-clock seconds to ticks, rounding up.
func SecondsToTime(seconds float64) Time {
	return Time(math.Ceil(seconds*TicksPerSecond + 0.5))
}

// TimeToSeconds converts ticks to wall-clock seconds.
func TimeToSeconds(t Time) float64 {
	return float64(t) / TicksPerSecond
}

// FrameToTime returns the tick at the beginning of the given frame.
func FrameToTime(frame int, ticksPerFrame Time) Time {
	return Time(frame) * ticksPerFrame
}

// TimeToFrame returns the frame number containing the given tick.
func TimeToFrame(t Time, ticksPerFrame Time) int {
	return int(t / ticksPerFrame)
}

// Interval is a closed range [Start, End] on the animation time axis.
type Interval struct {
	Start Time
	End   Time
}

// Never returns the empty interval. It is the absorbing element of Intersect.
func Never() Interval {
	return Interval{TimeNegativeInfinity, TimeNegativeInfinity}
}

// Forever returns the interval containing every time value. It is the
// identity element of Intersect.
func Forever() Interval {
	return Interval{TimeNegativeInfinity, TimePositiveInfinity}
}

// At returns the instant interval [t, t].
func At(t Time) Interval {
	return Interval{t, t}
}

// IsEmpty reports whether the interval contains no time values.
func (iv Interval) IsEmpty() bool {
	return iv.End == TimeNegativeInfinity || iv.Start > iv.End
}

// IsInfinite reports whether the interval contains every time value.
func (iv Interval) IsInfinite() bool {
	return iv.Start == TimeNegativeInfinity && iv.End == TimePositiveInfinity
}

// Contains reports whether t lies within the interval, bounds inclusive.
func (iv Interval) Contains(t Time) bool {
	return iv.Start <= t && t <= iv.End
}

// Intersect returns the overlap of two intervals. The result is Never when
// the intervals are disjoint or either one is empty.
func (iv Interval) Intersect(other Interval) Interval {
	if iv.IsEmpty() || other.IsEmpty() {
		return Never()
	}

	if iv.End < other.Start || iv.Start > other.End {
		return Never()
	}

	return Interval{max(iv.Start, other.Start), min(iv.End, other.End)}
}

func (iv Interval) String() string {
	if iv.IsEmpty() {
		return "[never]"
	}

	if iv.IsInfinite() {
		return "[forever]"
	}

	start := "-inf"
	if iv.Start != TimeNegativeInfinity {
		start = fmt.Sprintf("%d", iv.Start)
	}

	end := "+inf"
	if iv.End != TimePositiveInfinity {
		end = fmt.Sprintf("%d", iv.End)
	}

	return fmt.Sprintf("[%s, %s]", start, end)
}
