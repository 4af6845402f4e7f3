package elevation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// gradients returns the per-segment gradient Δelevation/Δdistance for each
// consecutive sample pair. Segments shorter than the zero-distance epsilon
// contribute a zero gradient rather than dividing by zero.
func gradients(t Trace) []float64 {
	if len(t) < 2 {
		return nil
	}
	out := make([]float64, len(t)-1)
	for i := 1; i < len(t); i++ {
		dd := t[i].DistanceM - t[i-1].DistanceM
		if dd < zeroDistanceEps {
			out[i-1] = 0
			continue
		}
		out[i-1] = (t[i].ElevationM - t[i-1].ElevationM) / dd
	}
	return out
}

// median returns the median of xs. Returns 0 for empty input.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// medianAbsDeviation returns the median absolute deviation of xs from the
// given centre.
func medianAbsDeviation(xs []float64, centre float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	devs := make([]float64, len(xs))
	for i, v := range xs {
		devs[i] = math.Abs(v - centre)
	}
	return median(devs)
}

// deltaStddev returns the sample standard deviation of consecutive elevation
// differences. This is the noise estimate that drives the adaptive smoothing
// window and the adaptive accumulation epsilon.
func deltaStddev(t Trace) float64 {
	if len(t) < 3 {
		return 0
	}
	deltas := make([]float64, len(t)-1)
	for i := 1; i < len(t); i++ {
		deltas[i-1] = t[i].ElevationM - t[i-1].ElevationM
	}
	return stat.StdDev(deltas, nil)
}
