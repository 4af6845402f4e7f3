package elevation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// maxResamplePoints bounds the memory used by a single resample call. Spacing
// values far below the trace's native resolution would otherwise allocate
// unbounded output.
const maxResamplePoints = 100000

// zeroDistanceEps is the floor below which a distance delta is treated as a
// zero-length segment.
const zeroDistanceEps = 1e-10

// ErrResampleBudget is returned when the requested spacing would produce more
// than maxResamplePoints output samples. The caller receives the input trace
// unresampled alongside this error.
var ErrResampleBudget = errors.New("resample point budget exceeded")

// Resample converts an irregularly spaced trace into one with uniform
// distance spacing, interpolating elevations linearly between the bracketing
// original samples. The output covers [first distance, total distance]; the
// final sample lands on the trace's last point even when that falls short of
// a full step. Targets at or beyond the total distance reuse the last
// original sample, and zero-length segments use the left sample's elevation.
func Resample(t Trace, spacingM float64) (Trace, error) {
	if spacingM <= 0 {
		return t, fmt.Errorf("spacing must be positive, got %f", spacingM)
	}
	if len(t) < 2 {
		return t, nil
	}

	total := t.TotalDistanceM()
	count := int(math.Ceil(total/spacingM)) + 1
	if count > maxResamplePoints {
		return t, fmt.Errorf("spacing %.3fm over %.1fm implies %d samples (max %d): %w",
			spacingM, total, count, maxResamplePoints, ErrResampleBudget)
	}

	start := t[0].DistanceM
	out := make(Trace, 0, count)
	for i := 0; i < count; i++ {
		target := start + float64(i)*spacingM
		if target > start+total {
			target = start + total
		}
		out = append(out, Sample{DistanceM: target, ElevationM: interpolateAt(t, target)})
	}
	return out, nil
}

// interpolateAt returns the elevation at the given distance by linear
// interpolation between the bracketing samples. The bracket is located with a
// binary search; the predecessor index is the left endpoint.
func interpolateAt(t Trace, distM float64) float64 {
	if distM <= t[0].DistanceM {
		return t[0].ElevationM
	}
	last := len(t) - 1
	if distM >= t[last].DistanceM {
		return t[last].ElevationM
	}

	// First index whose distance exceeds the target; predecessor is the
	// left side of the bracket.
	hi := sort.Search(len(t), func(i int) bool { return t[i].DistanceM > distM })
	lo := hi - 1

	span := t[hi].DistanceM - t[lo].DistanceM
	if span < zeroDistanceEps {
		return t[lo].ElevationM
	}
	frac := (distM - t[lo].DistanceM) / span
	return t[lo].ElevationM + frac*(t[hi].ElevationM-t[lo].ElevationM)
}
