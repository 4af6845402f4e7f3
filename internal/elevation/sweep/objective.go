package sweep

import (
	"math"
	"sort"
)

// ObjectiveWeights defines the linear combination behind the composite
// score. The composite convention is higher-is-better throughout; the
// separate error score (RankByError) is the only lower-is-better objective
// and the two are never mixed in one ranking.
type ObjectiveWeights struct {
	Accuracy         float64 `json:"accuracy"`
	Balance          float64 `json:"balance"`
	LossPreservation float64 `json:"loss_preservation"`
}

// DefaultObjectiveWeights returns the standard composite weighting.
func DefaultObjectiveWeights() ObjectiveWeights {
	return ObjectiveWeights{
		Accuracy:         0.4,
		Balance:          0.4,
		LossPreservation: 0.2,
	}
}

// AccuracyScore rewards accuracy-band coverage, weighting tighter bands
// more heavily, and penalises tracks landing outside ±20%. The band counts
// are cumulative, so each weight applies to the tracks the tighter band did
// not already claim.
func AccuracyScore(r ComboResult) float64 {
	return 10*float64(r.Within2) +
		6*float64(r.Within5-r.Within2) +
		3*float64(r.Within10-r.Within5) +
		1.5*float64(r.Within15-r.Within10) +
		1*float64(r.Within20-r.Within15) -
		5*float64(r.Outside)
}

// BalanceScore rewards gain/loss ratios near 100% across the corpus and
// penalises a drifting median ratio.
func BalanceScore(r ComboResult) float64 {
	return 10*float64(r.Balanced15) +
		5*float64(r.Balanced30-r.Balanced15) -
		2*math.Abs(r.MedianRatio-100)
}

// LossPreservationScore rewards symmetric treatment of climbs and descents:
// a pipeline that strips 40% of the gain should strip about 40% of the loss.
func LossPreservationScore(r ComboResult) float64 {
	return 100 - math.Abs(r.LossReductionPct-r.GainReductionPct)
}

// ScoreResult computes the composite score for a ComboResult. Higher is
// better.
func ScoreResult(r ComboResult, weights ObjectiveWeights) float64 {
	return weights.Accuracy*AccuracyScore(r) +
		weights.Balance*BalanceScore(r) +
		weights.LossPreservation*LossPreservationScore(r)
}

// ScoredResult pairs a ComboResult with its composite score.
type ScoredResult struct {
	ComboResult
	Score float64 `json:"score"`
}

// RankResults scores every ComboResult and sorts them best-first (highest
// score). Ties are broken by ascending combination index so the ranking is
// reproducible across runs.
func RankResults(results []ComboResult, weights ObjectiveWeights) []ScoredResult {
	scored := make([]ScoredResult, len(results))
	for i, r := range results {
		scored[i] = ScoredResult{
			ComboResult: r,
			Score:       ScoreResult(r, weights),
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ComboIndex < scored[j].ComboIndex
	})

	return scored
}

// ErrorScore is the alternative grid-optimizer objective: a weighted error
// magnitude where lower is better. It is kept separate from the composite
// score and never mixed into the same ranking.
func ErrorScore(r ComboResult) float64 {
	if r.ScoredCount == 0 {
		return math.MaxFloat64
	}

	var sumErr, maxErr float64
	for _, ev := range r.Evaluations {
		if ev.Err != "" || !ev.HasTruth {
			continue
		}
		dev := math.Abs(ev.AccuracyPct - 100)
		sumErr += dev
		if dev > maxErr {
			maxErr = dev
		}
	}
	meanErr := sumErr / float64(r.ScoredCount)

	return meanErr*0.4 +
		maxErr*0.25 +
		float64(r.ScoredCount-r.Within5)*3 +
		float64(r.ScoredCount-r.Within2)*1
}

// RankByError sorts ComboResults by ascending error score (best first),
// with the combination index as the deterministic tiebreak.
func RankByError(results []ComboResult) []ScoredResult {
	scored := make([]ScoredResult, len(results))
	for i, r := range results {
		scored[i] = ScoredResult{
			ComboResult: r,
			Score:       ErrorScore(r),
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score < scored[j].Score
		}
		return scored[i].ComboIndex < scored[j].ComboIndex
	})

	return scored
}
