package sweep

import (
	"math"

	"github.com/ridgeline-data/ascent.report/internal/elevation"
)

// ComboResult is the per-configuration summary over the whole corpus,
// computed once all of the configuration's evaluations exist.
type ComboResult struct {
	ComboIndex  int                `json:"combo_index"`
	ParamValues map[string]float64 `json:"param_values,omitempty"`
	Params      elevation.Params   `json:"params"`

	TrackCount  int `json:"track_count"`
	ScoredCount int `json:"scored_count"` // tracks with known ground truth
	FailedCount int `json:"failed_count"`

	// Accuracy distribution over scored tracks, where accuracy is
	// estimated/truth·100 (100 = perfect).
	MeanAccuracy   float64 `json:"mean_accuracy"`
	MedianAccuracy float64 `json:"median_accuracy"`
	BestAccuracy   float64 `json:"best_accuracy"`  // closest to 100
	WorstAccuracy  float64 `json:"worst_accuracy"` // farthest from 100
	AccuracyStddev float64 `json:"accuracy_stddev"`

	// Cumulative accuracy-band counts: scored tracks within ±x% of truth.
	Within2  int `json:"within_2"`
	Within5  int `json:"within_5"`
	Within10 int `json:"within_10"`
	Within15 int `json:"within_15"`
	Within20 int `json:"within_20"`
	Outside  int `json:"outside"` // beyond ±20%

	// Gain/loss balance over all successfully evaluated tracks.
	MeanRatio   float64 `json:"mean_ratio"`
	MedianRatio float64 `json:"median_ratio"`
	Balanced15  int     `json:"balanced_15"` // ratio in [85, 115]
	Balanced30  int     `json:"balanced_30"` // ratio in [70, 130]

	// Mean reduction relative to raw accumulation, in percent.
	GainReductionPct float64 `json:"gain_reduction_pct"`
	LossReductionPct float64 `json:"loss_reduction_pct"`

	Evaluations []EvaluationResult `json:"evaluations,omitempty"`
}

// computeComboResult folds one configuration's evaluations into the
// aggregate summary.
func computeComboResult(combo Combo, evals []EvaluationResult) ComboResult {
	out := ComboResult{
		ComboIndex:  combo.Index,
		ParamValues: combo.Values,
		Params:      combo.Params,
		TrackCount:  len(evals),
		Evaluations: evals,
	}

	var accuracies, ratios []float64
	var gainReds, lossReds []float64
	for _, ev := range evals {
		if ev.Err != "" {
			out.FailedCount++
			continue
		}
		ratios = append(ratios, ev.Ratio)
		if ev.RawGainM > 0 {
			gainReds = append(gainReds, (ev.RawGainM-ev.GainM)/ev.RawGainM*100)
		}
		if ev.RawLossM > 0 {
			lossReds = append(lossReds, (ev.RawLossM-ev.LossM)/ev.RawLossM*100)
		}
		if !ev.HasTruth {
			continue
		}
		accuracies = append(accuracies, ev.AccuracyPct)
	}

	out.ScoredCount = len(accuracies)
	for _, acc := range accuracies {
		dev := math.Abs(acc - 100)
		switch {
		case dev <= 2:
			out.Within2++
		case dev <= 5:
			out.Within5++
		case dev <= 10:
			out.Within10++
		case dev <= 15:
			out.Within15++
		case dev <= 20:
			out.Within20++
		default:
			out.Outside++
		}
	}
	// Bands are cumulative: every tighter band counts toward the looser ones.
	out.Within5 += out.Within2
	out.Within10 += out.Within5
	out.Within15 += out.Within10
	out.Within20 += out.Within15

	if len(accuracies) > 0 {
		out.MeanAccuracy, out.AccuracyStddev = MeanStddev(accuracies)
		out.MedianAccuracy = Median(accuracies)

		best, worst := accuracies[0], accuracies[0]
		for _, acc := range accuracies[1:] {
			if math.Abs(acc-100) < math.Abs(best-100) {
				best = acc
			}
			if math.Abs(acc-100) > math.Abs(worst-100) {
				worst = acc
			}
		}
		out.BestAccuracy = best
		out.WorstAccuracy = worst
	}

	if len(ratios) > 0 {
		out.MeanRatio, _ = MeanStddev(ratios)
		out.MedianRatio = Median(ratios)
		for _, r := range ratios {
			if r >= 85 && r <= 115 {
				out.Balanced15++
			}
			if r >= 70 && r <= 130 {
				out.Balanced30++
			}
		}
	}

	if len(gainReds) > 0 {
		out.GainReductionPct, _ = MeanStddev(gainReds)
	}
	if len(lossReds) > 0 {
		out.LossReductionPct, _ = MeanStddev(lossReds)
	}

	return out
}
