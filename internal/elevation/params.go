package elevation

// Params is one pipeline configuration: a flat record of every numeric knob.
// Values are clamped to their declared bounds by Clamp; a Params value is
// immutable once handed to Process, so many configurations can be evaluated
// concurrently.
type Params struct {
	// Resampling.
	SpacingM float64 `json:"spacing_m"`

	// Outlier correction.
	OutlierMultiplier float64 `json:"outlier_multiplier"`

	// Smoothing strategy: SmootherAdaptive or SmootherButterworth.
	Smoother string `json:"smoother"`

	// Adaptive strategy knobs.
	Alpha     float64 `json:"alpha"`
	WindowMin int     `json:"window_min"`
	WindowMax int     `json:"window_max"`

	// Butterworth strategy knob: feature scale to preserve.
	IntervalM float64 `json:"interval_m"`

	// Gradient post-processing.
	BlendGradients bool    `json:"blend_gradients"`
	BlendFactor    float64 `json:"blend_factor"`
	ClampGradients bool    `json:"clamp_gradients"`
	MinGradient    float64 `json:"min_gradient"`
	MaxGradient    float64 `json:"max_gradient"`

	// Accumulation dead-zone thresholds. Zero disables the directional
	// dead-zone; the Butterworth strategy then falls back to the adaptive
	// epsilon accumulator.
	GainThresholdM float64 `json:"gain_threshold_m"`
	LossThresholdM float64 `json:"loss_threshold_m"`

	// Terrain-adaptive processing: classify the track and override window,
	// gradient cap, and spike threshold per terrain class.
	TerrainAdaptive bool `json:"terrain_adaptive"`

	// Three-point median prefilter ahead of smoothing.
	MedianPrefilter bool `json:"median_prefilter"`
}

// Declared bounds for every clamped field.
const (
	minSpacingM = 0.5
	maxSpacingM = 100

	minMultiplier = 1.0
	maxMultiplier = 10.0

	minAlpha = 1.0
	maxAlpha = 200.0

	minWindowBound = 3
	maxWindowBound = 1001

	minIntervalM = 1.0
	maxIntervalM = 100.0

	maxThresholdM = 10.0

	gradientBound = 2.0
)

// DefaultParams returns the aggressive baseline configuration. It favours
// strong smoothing with the adaptive strategy and relies on the gradient
// clamp rather than dead-zone thresholds.
func DefaultParams() Params {
	return Params{
		SpacingM:          5,
		OutlierMultiplier: 3,
		Smoother:          SmootherAdaptive,
		Alpha:             50,
		WindowMin:         51,
		WindowMax:         301,
		IntervalM:         10,
		BlendGradients:    false,
		BlendFactor:       0,
		ClampGradients:    true,
		MinGradient:       DefaultMinGradient,
		MaxGradient:       DefaultMaxGradient,
	}
}

// ConservativeParams smooths lightly and keeps more of the raw signal via
// gradient blending. Suited to clean barometric traces.
func ConservativeParams() Params {
	p := DefaultParams()
	p.Alpha = 20
	p.WindowMin = 21
	p.WindowMax = 101
	p.OutlierMultiplier = 5
	p.BlendGradients = true
	p.BlendFactor = 0.2
	p.MinGradient = -1.0
	p.MaxGradient = 1.0
	return p
}

// ModerateParams sits between the conservative and default configurations.
func ModerateParams() Params {
	p := DefaultParams()
	p.Alpha = 35
	p.WindowMin = 31
	p.WindowMax = 151
	p.OutlierMultiplier = 4
	p.BlendGradients = true
	p.BlendFactor = 0.15
	p.MinGradient = -0.7
	p.MaxGradient = 0.8
	return p
}

// Clamp forces every bounded field into its declared range and fills
// unset strategy names. Out-of-range values are never silently accepted by
// the pipeline; construction goes through Clamp.
func (p Params) Clamp() Params {
	p.SpacingM = clampF(p.SpacingM, minSpacingM, maxSpacingM)
	p.OutlierMultiplier = clampF(p.OutlierMultiplier, minMultiplier, maxMultiplier)
	p.Alpha = clampF(p.Alpha, minAlpha, maxAlpha)
	p.WindowMin = clampI(p.WindowMin, minWindowBound, maxWindowBound)
	p.WindowMax = clampI(p.WindowMax, p.WindowMin, maxWindowBound)
	p.IntervalM = clampF(p.IntervalM, minIntervalM, maxIntervalM)
	p.BlendFactor = clampF(p.BlendFactor, 0, 1)
	p.MinGradient = clampF(p.MinGradient, -gradientBound, 0)
	p.MaxGradient = clampF(p.MaxGradient, 0, gradientBound)
	p.GainThresholdM = clampF(p.GainThresholdM, 0, maxThresholdM)
	p.LossThresholdM = clampF(p.LossThresholdM, 0, maxThresholdM)
	if p.Smoother != SmootherButterworth {
		p.Smoother = SmootherAdaptive
	}
	return p
}

// NewSmoother builds the strategy the configuration selects.
func (p Params) NewSmoother() Smoother {
	if p.Smoother == SmootherButterworth {
		return ButterworthSmoother{IntervalM: p.IntervalM}
	}
	return AdaptiveSmoother{Alpha: p.Alpha, WindowMin: p.WindowMin, WindowMax: p.WindowMax}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
