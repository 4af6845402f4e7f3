package elevation

// Default gradient clamp bounds. Grades steeper than +60% or descents
// steeper than -50% on a resampled trace are treated as smoothing artefacts.
const (
	DefaultMinGradient = -0.5
	DefaultMaxGradient = 0.6
)

// GradientProcessor post-processes the smoothed trace in gradient space:
// optionally blend smoothed gradients with the pre-smoothing gradients, then
// optionally clamp the result to a plausible range, then reintegrate into
// elevations. Blending happens before clamping.
type GradientProcessor struct {
	// Blend mixes raw gradients back in: blended = BlendFactor·raw +
	// (1−BlendFactor)·smoothed. Disabled when Blend is false.
	Blend       bool
	BlendFactor float64

	// Clamp bounds gradients to [MinGradient, MaxGradient] (rise over run).
	// Disabled when Clamp is false.
	Clamp       bool
	MinGradient float64
	MaxGradient float64
}

// Apply runs the gradient post-processing stage. raw is the outlier-corrected
// trace ahead of smoothing; smoothed is the smoother's output. Both must have
// the same length and distances. The first elevation is preserved and the
// remainder reintegrated from the processed gradients.
func (g GradientProcessor) Apply(raw, smoothed Trace) Trace {
	if len(smoothed) < 2 || len(raw) != len(smoothed) {
		return smoothed
	}
	if !g.Blend && !g.Clamp {
		return smoothed
	}

	smoothGrads := gradients(smoothed)
	var rawGrads []float64
	if g.Blend {
		rawGrads = gradients(raw)
	}

	lo, hi := g.MinGradient, g.MaxGradient
	if lo == 0 && hi == 0 {
		lo, hi = DefaultMinGradient, DefaultMaxGradient
	}

	processed := make([]float64, len(smoothGrads))
	for i, grad := range smoothGrads {
		if g.Blend {
			grad = g.BlendFactor*rawGrads[i] + (1-g.BlendFactor)*grad
		}
		if g.Clamp {
			if grad < lo {
				grad = lo
			}
			if grad > hi {
				grad = hi
			}
		}
		processed[i] = grad
	}

	out := make(Trace, len(smoothed))
	out[0] = smoothed[0]
	for i := 1; i < len(smoothed); i++ {
		dd := smoothed[i].DistanceM - smoothed[i-1].DistanceM
		out[i] = Sample{
			DistanceM:  smoothed[i].DistanceM,
			ElevationM: out[i-1].ElevationM + processed[i-1]*dd,
		}
	}
	return out
}
