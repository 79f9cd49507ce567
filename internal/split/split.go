// Package split selects cut points for dividing a recording into segments of
// roughly equal length, snapping each cut to a nearby silence when one exists.
package split

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned when SelectSplits receives a non-positive
// duration or target length, a negative tolerance, or arguments that would
// produce more than MaxSegments segments.
var ErrInvalidArgument = errors.New("split: invalid argument")

// MaxSegments caps the number of segments a single recording may be split into.
const MaxSegments = 100000

// Silence is a detected silence interval in seconds from the recording start.
type Silence struct {
	Start float64
	End   float64
}

// Midpoint returns the center of the interval.
func (s Silence) Midpoint() float64 {
	return (s.Start + s.End) / 2
}

// Len returns the length of the interval in seconds.
func (s Silence) Len() float64 {
	return s.End - s.Start
}

// boundary is one internal break between two consecutive segments.
type boundary struct {
	ideal   float64
	chosen  float64
	bestLen float64
}

// SegmentCount returns how many segments a recording of the given duration is
// divided into for the target length. It is always at least 1.
func SegmentCount(duration, target float64) int {
	n := int(math.Ceil(duration / target))
	if n < 1 {
		return 1
	}
	return n
}

// SelectSplits returns one cut timestamp per segment boundary.
//
// Boundaries sit on a uniform grid of duration/SegmentCount. A silence is
// owned by the boundary nearest to its midpoint on the target-length grid and
// replaces that boundary's position when its midpoint lies within tolerance of
// the uniform position. When several silences qualify for one boundary the
// longest wins; ties keep the one seen first.
//
// The result is strictly increasing only while tolerance is below half the
// uniform spacing; larger tolerances can yield cuts out of order.
func SelectSplits(silences []Silence, duration, target, tolerance float64) ([]float64, error) {
	if err := checkArgs(duration, target, tolerance); err != nil {
		return nil, err
	}

	count := SegmentCount(duration, target)
	if count <= 1 {
		return []float64{}, nil
	}

	even := duration / float64(count)
	bounds := make([]boundary, count-1)
	for i := range bounds {
		ideal := float64(i+1) * even
		bounds[i] = boundary{ideal: ideal, chosen: ideal}
	}

	for _, s := range silences {
		mid := s.Midpoint()

		// Ownership is decided on the target grid, the tolerance check on the
		// even grid. The two diverge when target does not divide duration.
		i := int(math.Floor((mid+target/2)/target)) - 1
		if i < 0 || i >= len(bounds) {
			continue
		}
		b := &bounds[i]
		if math.Abs(b.ideal-mid) > tolerance {
			continue
		}
		if l := s.Len(); l > b.bestLen {
			b.chosen = mid
			b.bestLen = l
		}
	}

	splits := make([]float64, len(bounds))
	for i, b := range bounds {
		splits[i] = b.chosen
	}
	return splits, nil
}

func checkArgs(duration, target, tolerance float64) error {
	switch {
	case !(duration > 0) || math.IsInf(duration, 0):
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidArgument, duration)
	case !(target > 0) || math.IsInf(target, 0):
		return fmt.Errorf("%w: segment length must be positive, got %v", ErrInvalidArgument, target)
	case !(tolerance >= 0):
		return fmt.Errorf("%w: segment delta must not be negative, got %v", ErrInvalidArgument, tolerance)
	case duration/target > MaxSegments:
		return fmt.Errorf("%w: segment length %v splits %v seconds into more than %d segments",
			ErrInvalidArgument, target, duration, MaxSegments)
	}
	return nil
}
