package sweep

import (
	"math"
	"testing"
)

func TestComputeComboResult(t *testing.T) {
	evals := []EvaluationResult{
		{
			Track: "a", HasTruth: true, AccuracyPct: 101, Ratio: 100,
			RawGainM: 100, GainM: 90, RawLossM: 50, LossM: 45,
		},
		{
			Track: "b", HasTruth: true, AccuracyPct: 96, Ratio: 110,
			RawGainM: 200, GainM: 150, RawLossM: 100, LossM: 80,
		},
		{
			Track: "c", HasTruth: true, AccuracyPct: 130, Ratio: 140,
			RawGainM: 100, GainM: 130,
		},
		{Track: "d", Err: "boom"},
	}

	got := computeComboResult(Combo{Index: 7}, evals)

	if got.ComboIndex != 7 {
		t.Errorf("ComboIndex = %d", got.ComboIndex)
	}
	if got.TrackCount != 4 || got.ScoredCount != 3 || got.FailedCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1", got.TrackCount, got.ScoredCount, got.FailedCount)
	}

	// Bands are cumulative: 101 lands in every band, 96 in +-5 and looser,
	// 130 only outside.
	if got.Within2 != 1 || got.Within5 != 2 || got.Within10 != 2 ||
		got.Within15 != 2 || got.Within20 != 2 || got.Outside != 1 {
		t.Errorf("bands = %d/%d/%d/%d/%d outside %d",
			got.Within2, got.Within5, got.Within10, got.Within15, got.Within20, got.Outside)
	}

	if math.Abs(got.MeanAccuracy-109) > 1e-9 {
		t.Errorf("MeanAccuracy = %f, want 109", got.MeanAccuracy)
	}
	if got.MedianAccuracy != 101 {
		t.Errorf("MedianAccuracy = %f, want 101", got.MedianAccuracy)
	}
	if got.BestAccuracy != 101 || got.WorstAccuracy != 130 {
		t.Errorf("best/worst = %f/%f, want 101/130", got.BestAccuracy, got.WorstAccuracy)
	}

	// Failed track contributes to no ratio statistics.
	if got.MedianRatio != 110 {
		t.Errorf("MedianRatio = %f, want 110", got.MedianRatio)
	}
	if got.Balanced15 != 2 || got.Balanced30 != 2 {
		t.Errorf("balanced = %d/%d, want 2/2", got.Balanced15, got.Balanced30)
	}

	// Reductions: (10 + 25 - 30)/3 for gain, (10 + 20)/2 for loss; track c
	// has no raw loss so it is excluded from the loss mean.
	if math.Abs(got.GainReductionPct-5.0/3.0) > 1e-9 {
		t.Errorf("GainReductionPct = %f", got.GainReductionPct)
	}
	if math.Abs(got.LossReductionPct-15) > 1e-9 {
		t.Errorf("LossReductionPct = %f", got.LossReductionPct)
	}
}

func TestComputeComboResultAllFailed(t *testing.T) {
	evals := []EvaluationResult{
		{Track: "a", Err: "bad"},
		{Track: "b", Err: "worse"},
	}
	got := computeComboResult(Combo{Index: 0}, evals)
	if got.FailedCount != 2 || got.ScoredCount != 0 {
		t.Errorf("counts = %d failed, %d scored", got.FailedCount, got.ScoredCount)
	}
	if got.MeanAccuracy != 0 || got.MedianRatio != 0 {
		t.Errorf("aggregates should stay zero: %+v", got)
	}
}

func TestComputeComboResultNoTruth(t *testing.T) {
	evals := []EvaluationResult{
		{Track: "a", Ratio: 95, RawGainM: 100, GainM: 80},
		{Track: "b", Ratio: 105, RawGainM: 100, GainM: 90},
	}
	got := computeComboResult(Combo{Index: 0}, evals)
	if got.ScoredCount != 0 {
		t.Errorf("ScoredCount = %d, want 0", got.ScoredCount)
	}
	// Balance statistics still come from successfully evaluated tracks.
	if got.Balanced15 != 2 {
		t.Errorf("Balanced15 = %d, want 2", got.Balanced15)
	}
	if math.Abs(got.GainReductionPct-15) > 1e-9 {
		t.Errorf("GainReductionPct = %f, want 15", got.GainReductionPct)
	}
}
