// Package elevation implements the signal-conditioning pipeline that turns a
// raw, noisy (distance, elevation) trace into a denoised trace and a
// cumulative gain/loss figure. The pipeline stages are: resampling to uniform
// distance spacing, robust outlier correction, smoothing (adaptive weighted
// averaging or zero-phase low-pass filtering), gradient post-processing, and
// gain/loss accumulation.
package elevation

import "fmt"

// Sample is one point of a trace: cumulative distance along the track and the
// recorded elevation at that distance, both in metres.
type Sample struct {
	DistanceM  float64 `json:"distance_m"`
	ElevationM float64 `json:"elevation_m"`
}

// Trace is an ordered sequence of samples. Distances are non-decreasing.
// Traces are treated as immutable: every pipeline stage returns a new trace
// and never modifies its input.
type Trace []Sample

// NewTrace validates the sample sequence and returns it as a Trace.
// It rejects empty input and decreasing distances.
func NewTrace(samples []Sample) (Trace, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("trace must contain at least one sample")
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].DistanceM < samples[i-1].DistanceM {
			return nil, fmt.Errorf("distance decreases at sample %d: %.3f < %.3f",
				i, samples[i].DistanceM, samples[i-1].DistanceM)
		}
	}
	return Trace(samples), nil
}

// Clone returns an independent copy of the trace.
func (t Trace) Clone() Trace {
	out := make(Trace, len(t))
	copy(out, t)
	return out
}

// TotalDistanceM returns the cumulative distance covered by the trace.
func (t Trace) TotalDistanceM() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].DistanceM - t[0].DistanceM
}

// Elevations returns the elevation values as a flat slice.
func (t Trace) Elevations() []float64 {
	out := make([]float64, len(t))
	for i, s := range t {
		out[i] = s.ElevationM
	}
	return out
}

// WithElevations returns a new trace with the same distances and the given
// elevation values. The lengths must match.
func (t Trace) WithElevations(elevs []float64) Trace {
	if len(elevs) != len(t) {
		panic(fmt.Sprintf("elevation count %d does not match trace length %d", len(elevs), len(t)))
	}
	out := make(Trace, len(t))
	for i, s := range t {
		out[i] = Sample{DistanceM: s.DistanceM, ElevationM: elevs[i]}
	}
	return out
}

// MeanSpacingM returns the mean distance between consecutive samples.
// Returns 0 for traces with fewer than two samples.
func (t Trace) MeanSpacingM() float64 {
	if len(t) < 2 {
		return 0
	}
	return t.TotalDistanceM() / float64(len(t)-1)
}
