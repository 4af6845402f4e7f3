package sweep

import (
	"fmt"

	"github.com/ridgeline-data/ascent.report/internal/elevation"
	"github.com/ridgeline-data/ascent.report/internal/groundtruth"
)

// Track is one corpus entry: a parsed trace and the filename it was loaded
// from, which keys the ground-truth lookup.
type Track struct {
	Name  string
	Trace elevation.Trace
}

// EvaluationResult is the outcome of running one configuration over one
// track. A failed evaluation carries its error in Err and zeroes elsewhere;
// it never terminates sibling evaluations.
type EvaluationResult struct {
	Track       string                `json:"track"`
	GainM       float64               `json:"gain_m"`
	LossM       float64               `json:"loss_m"`
	Ratio       float64               `json:"ratio"`
	RawGainM    float64               `json:"raw_gain_m"`
	RawLossM    float64               `json:"raw_loss_m"`
	TruthGainM  float64               `json:"truth_gain_m,omitempty"`
	HasTruth    bool                  `json:"has_truth"`
	AccuracyPct float64               `json:"accuracy_pct,omitempty"` // estimated/truth·100; only when HasTruth
	Diagnostics elevation.Diagnostics `json:"diagnostics"`
	Err         string                `json:"error,omitempty"`
}

// Evaluator runs the pipeline for (configuration, track) pairs. It holds
// only read-only state, so a single Evaluator is safe to share across
// workers.
type Evaluator struct {
	Truth groundtruth.Lookup
}

// Evaluate runs one configuration over one track. Panics inside the pipeline
// are contained and reported through the result's Err field.
func (e Evaluator) Evaluate(params elevation.Params, track Track) (result EvaluationResult) {
	result = EvaluationResult{Track: track.Name}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	rawGain, rawLoss := elevation.GainLoss(track.Trace)
	result.RawGainM = rawGain
	result.RawLossM = rawLoss

	res, err := elevation.Process(params, track.Trace)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.GainM = res.GainM
	result.LossM = res.LossM
	result.Ratio = res.Ratio
	result.Diagnostics = res.Diagnostics

	if e.Truth != nil {
		if truth := e.Truth.GainM(track.Name); truth > 0 {
			result.HasTruth = true
			result.TruthGainM = float64(truth)
			result.AccuracyPct = res.GainM / float64(truth) * 100
		}
	}
	return result
}
