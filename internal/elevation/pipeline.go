package elevation

import (
	"errors"
	"fmt"
)

// Diagnostics records the per-run values each stage settled on, for
// inspection and scoring-side analysis.
type Diagnostics struct {
	RawPoints       int     `json:"raw_points"`
	ResampledPoints int     `json:"resampled_points"`
	OutliersFixed   int     `json:"outliers_fixed"`
	WindowSize      int     `json:"window_size,omitempty"`
	CutoffRatio     float64 `json:"cutoff_ratio,omitempty"`
	EpsilonM        float64 `json:"epsilon_m,omitempty"`
	Terrain         string  `json:"terrain,omitempty"`
	ResampleSkipped bool    `json:"resample_skipped,omitempty"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	GainM       float64     `json:"gain_m"`
	LossM       float64     `json:"loss_m"`
	Ratio       float64     `json:"ratio"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Process runs the full pipeline for one configuration over one trace:
// resample, correct outliers, smooth, post-process gradients, accumulate.
// It is a pure function of (params, trace); the input trace is never
// modified. A resample budget violation degrades to processing the raw
// trace and is reported in the diagnostics rather than failing the run.
func Process(params Params, t Trace) (Result, error) {
	if len(t) == 0 {
		return Result{}, fmt.Errorf("empty trace")
	}
	p := params.Clamp()

	diag := Diagnostics{RawPoints: len(t)}

	resampled, err := Resample(t, p.SpacingM)
	if err != nil {
		if !errors.Is(err, ErrResampleBudget) {
			return Result{}, fmt.Errorf("resample: %w", err)
		}
		diag.ResampleSkipped = true
	}
	diag.ResampledPoints = len(resampled)

	corrected, fixed := CorrectOutliers(resampled, p.OutlierMultiplier)
	diag.OutliersFixed = fixed

	spikeThresholdM := 0.0
	if p.TerrainAdaptive {
		rawGain, _ := GainLoss(corrected)
		class := ClassifyTerrain(rawGain, corrected.TotalDistanceM())
		tp := ParamsForTerrain(class)
		diag.Terrain = class.String()

		p.WindowMin = clampI(tp.WindowSize, minWindowBound, maxWindowBound)
		p.WindowMax = p.WindowMin
		p.ClampGradients = true
		p.MaxGradient = tp.MaxGradient
		p.MinGradient = -tp.MaxGradient
		spikeThresholdM = tp.SpikeThresholdM
	}

	preSmooth := corrected
	if p.MedianPrefilter {
		preSmooth = MedianFilter3(preSmooth)
	}

	smoother := p.NewSmoother()
	smoothed := smoother.Smooth(preSmooth, p.SpacingM)

	switch s := smoother.(type) {
	case AdaptiveSmoother:
		diag.WindowSize = s.WindowSize(preSmooth, p.SpacingM)
	case ButterworthSmoother:
		diag.CutoffRatio = s.CutoffRatio(p.SpacingM)
	}

	post := GradientProcessor{
		Blend:       p.BlendGradients,
		BlendFactor: p.BlendFactor,
		Clamp:       p.ClampGradients,
		MinGradient: p.MinGradient,
		MaxGradient: p.MaxGradient,
	}
	final := post.Apply(corrected, smoothed)

	if spikeThresholdM > 0 {
		final = RemoveSpikes(final, spikeThresholdM)
	}

	var gain, loss float64
	switch {
	case p.GainThresholdM > 0 || p.LossThresholdM > 0:
		gain, loss = DeadZoneGainLoss(final, p.GainThresholdM, p.LossThresholdM)
	case p.Smoother == SmootherButterworth:
		eps := AdaptiveEpsilon(final, p.IntervalM)
		diag.EpsilonM = eps
		gain, loss = EpsilonGainLoss(final, eps)
	default:
		gain, loss = GainLoss(final)
	}

	return Result{
		GainM:       gain,
		LossM:       loss,
		Ratio:       GainLossRatio(gain, loss),
		Diagnostics: diag,
	}, nil
}
