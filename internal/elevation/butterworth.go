package elevation

import (
	"math"
)

// minButterworthSamples is the shortest trace the zero-phase filter will
// touch. Below this the transient dominates the output.
const minButterworthSamples = 10

// Normalized cutoff bounds as a fraction of the Nyquist frequency. Cutoffs
// outside this band make the biquad design numerically unstable.
const (
	minCutoffRatio = 0.01
	maxCutoffRatio = 0.45
)

// ButterworthSmoother applies a second-order low-pass filter forward and then
// reversed over the trace, cancelling the filter's phase delay (zero-phase
// filtering). The cutoff frequency is chosen to preserve spatial wavelengths
// of roughly twice the configured interval, converted to a normalized
// frequency using the actual resample spacing.
type ButterworthSmoother struct {
	// IntervalM is the spatial feature scale to preserve, in metres.
	// Wavelengths shorter than about 2×IntervalM are attenuated.
	IntervalM float64
}

// Name implements Smoother.
func (s ButterworthSmoother) Name() string { return SmootherButterworth }

// CutoffRatio returns the normalized cutoff (as a fraction of Nyquist) that
// Smooth will use for the given resample spacing, after clamping.
func (s ButterworthSmoother) CutoffRatio(spacingM float64) float64 {
	interval := s.IntervalM
	if interval <= 0 {
		interval = 2 * spacingM
	}
	if spacingM <= 0 {
		return minCutoffRatio
	}

	// Preserve wavelengths down to ~2× the interval. Cutoff in cycles per
	// metre, normalized against the Nyquist frequency of the sampled trace.
	wavelength := 2 * interval
	cutoff := 1.0 / wavelength
	nyquist := 0.5 / spacingM
	ratio := cutoff / nyquist

	if ratio < minCutoffRatio {
		ratio = minCutoffRatio
	}
	if ratio > maxCutoffRatio {
		ratio = maxCutoffRatio
	}
	return ratio
}

// Smooth implements Smoother. If the filter design fails for a degenerate
// cutoff the input trace is returned unfiltered.
func (s ButterworthSmoother) Smooth(t Trace, spacingM float64) Trace {
	if len(t) < minButterworthSamples {
		return t
	}

	coeffs, ok := designLowPass(s.CutoffRatio(spacingM))
	if !ok {
		return t
	}

	elevs := t.Elevations()
	forward := coeffs.apply(elevs)
	reverseInPlace(forward)
	backward := coeffs.apply(forward)
	reverseInPlace(backward)
	return t.WithElevations(backward)
}

// biquad holds the normalized coefficients of a second-order IIR section:
// y[n] = b0·x[n] + b1·x[n-1] + b2·x[n-2] − a1·y[n-1] − a2·y[n-2].
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// designLowPass builds a second-order Butterworth low-pass section for the
// given normalized cutoff (fraction of Nyquist). Returns ok=false when the
// cutoff is degenerate or the design produces non-finite coefficients.
func designLowPass(cutoffRatio float64) (biquad, bool) {
	if cutoffRatio <= 0 || cutoffRatio >= 1 {
		return biquad{}, false
	}

	// Butterworth Q; together with the -40 dB/decade rolloff this gives the
	// maximally flat passband.
	const q = math.Sqrt2 / 2

	omega := math.Pi * cutoffRatio
	sn, cs := math.Sin(omega), math.Cos(omega)
	alpha := sn / (2 * q)

	a0 := 1 + alpha
	c := biquad{
		b0: (1 - cs) / 2 / a0,
		b1: (1 - cs) / a0,
		b2: (1 - cs) / 2 / a0,
		a1: (-2 * cs) / a0,
		a2: (1 - alpha) / a0,
	}
	for _, v := range []float64{c.b0, c.b1, c.b2, c.a1, c.a2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return biquad{}, false
		}
	}
	return c, true
}

// apply runs the filter over xs and returns the output. The delay line is
// seeded with the first input value to suppress the startup transient.
func (c biquad) apply(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}

	x1, x2 := xs[0], xs[0]
	y1, y2 := xs[0], xs[0]
	for i, x := range xs {
		y := c.b0*x + c.b1*x1 + c.b2*x2 - c.a1*y1 - c.a2*y2
		out[i] = y
		x2, x1 = x1, x
		y2, y1 = y1, y
	}
	return out
}

func reverseInPlace(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
