package elevation

import "math"

// Smoother strategies consume an outlier-corrected, resampled trace and
// return a smoothed trace of the same length. The resample spacing is passed
// in because both strategies scale their bandwidth by it.
type Smoother interface {
	// Name identifies the strategy for diagnostics and persistence.
	Name() string
	// Smooth returns a smoothed copy of the trace. Traces shorter than the
	// strategy's minimum length are returned unchanged.
	Smooth(t Trace, spacingM float64) Trace
}

// Smoother strategy names accepted by configurations.
const (
	SmootherAdaptive    = "adaptive"
	SmootherButterworth = "butterworth"
)

// minAdaptiveSamples is the shortest trace the adaptive smoother will touch.
const minAdaptiveSamples = 5

// AdaptiveSmoother performs weighted local averaging with a window that
// scales with the trace's noise-to-spacing ratio: window = round(alpha·σ/μ),
// where σ is the standard deviation of consecutive elevation differences and
// μ is the mean sample spacing. The window is clamped to
// [WindowMin, WindowMax] and forced odd. Weights within the window are
// Gaussian with standard deviation window/6, which softens edge effects
// relative to a flat moving average.
type AdaptiveSmoother struct {
	Alpha     float64
	WindowMin int
	WindowMax int
}

// Name implements Smoother.
func (s AdaptiveSmoother) Name() string { return SmootherAdaptive }

// WindowSize returns the adaptive window the smoother would use for the
// given trace, after clamping and odd-forcing.
func (s AdaptiveSmoother) WindowSize(t Trace, spacingM float64) int {
	mu := spacingM
	if mu <= 0 {
		mu = t.MeanSpacingM()
	}
	if mu < zeroDistanceEps {
		return s.clampWindow(s.WindowMin)
	}
	sigma := deltaStddev(t)
	window := int(math.Round(s.Alpha * sigma / mu))
	return s.clampWindow(window)
}

func (s AdaptiveSmoother) clampWindow(window int) int {
	min, max := s.WindowMin, s.WindowMax
	if min < 3 {
		min = 3
	}
	if max < min {
		max = min
	}
	if window < min {
		window = min
	}
	if window > max {
		window = max
	}
	if window%2 == 0 {
		window++
	}
	return window
}

// Smooth implements Smoother.
func (s AdaptiveSmoother) Smooth(t Trace, spacingM float64) Trace {
	if len(t) < minAdaptiveSamples {
		return t
	}

	window := s.WindowSize(t, spacingM)
	half := window / 2
	weights := gaussianWeights(window)

	elevs := t.Elevations()
	out := make([]float64, len(elevs))
	for i := range elevs {
		var sum, wsum float64
		for k := -half; k <= half; k++ {
			j := i + k
			if j < 0 || j >= len(elevs) {
				continue
			}
			w := weights[k+half]
			sum += w * elevs[j]
			wsum += w
		}
		if wsum < zeroDistanceEps {
			out[i] = elevs[i]
			continue
		}
		out[i] = sum / wsum
	}
	return t.WithElevations(out)
}

// gaussianWeights returns a window-length weight kernel centred on the middle
// index with standard deviation window/6.
func gaussianWeights(window int) []float64 {
	sigma := float64(window) / 6.0
	if sigma < zeroDistanceEps {
		sigma = 1
	}
	half := window / 2
	weights := make([]float64, window)
	for i := range weights {
		d := float64(i - half)
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
	}
	return weights
}

// MedianFilter3 applies a three-point median prefilter, which knocks down
// single-sample spikes before the weighted averaging sees them. Endpoints are
// passed through.
func MedianFilter3(t Trace) Trace {
	if len(t) < 3 {
		return t
	}
	elevs := t.Elevations()
	out := make([]float64, len(elevs))
	out[0] = elevs[0]
	out[len(out)-1] = elevs[len(elevs)-1]
	for i := 1; i < len(elevs)-1; i++ {
		out[i] = median3(elevs[i-1], elevs[i], elevs[i+1])
	}
	return t.WithElevations(out)
}

func median3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}
