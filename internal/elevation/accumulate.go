package elevation

import "math"

// GainLoss sums positive elevation deltas into gain and negative deltas into
// loss (both reported as positive metres). This is the naive accumulation
// every dead-zone variant is compared against.
func GainLoss(t Trace) (gainM, lossM float64) {
	for i := 1; i < len(t); i++ {
		delta := t[i].ElevationM - t[i-1].ElevationM
		if delta > 0 {
			gainM += delta
		} else {
			lossM -= delta
		}
	}
	return gainM, lossM
}

// DeadZoneGainLoss accumulates gain and loss against a tracked baseline
// elevation with separate uphill and downhill thresholds. The baseline only
// advances when the change from it exceeds +gainThresholdM or falls below
// −lossThresholdM; smaller excursions are discarded as noise. The result is
// never larger than the naive sum.
func DeadZoneGainLoss(t Trace, gainThresholdM, lossThresholdM float64) (gainM, lossM float64) {
	if len(t) == 0 {
		return 0, 0
	}
	if gainThresholdM < 0 {
		gainThresholdM = 0
	}
	if lossThresholdM < 0 {
		lossThresholdM = 0
	}

	baseline := t[0].ElevationM
	for i := 1; i < len(t); i++ {
		delta := t[i].ElevationM - baseline
		switch {
		case delta > gainThresholdM:
			gainM += delta
			baseline = t[i].ElevationM
		case delta < -lossThresholdM:
			lossM -= delta
			baseline = t[i].ElevationM
		}
	}
	return gainM, lossM
}

// EpsilonGainLoss sums only the deltas whose magnitude exceeds epsilonM and
// discards the rest as noise, delta by delta. This is the symmetric dead-zone
// used by the zero-phase filter pipeline, where residual ripple is small and
// uncorrelated; a sustained climb arriving in sub-epsilon steps contributes
// nothing.
func EpsilonGainLoss(t Trace, epsilonM float64) (gainM, lossM float64) {
	if epsilonM <= 0 {
		return GainLoss(t)
	}
	for i := 1; i < len(t); i++ {
		delta := t[i].ElevationM - t[i-1].ElevationM
		if delta > epsilonM {
			gainM += delta
		} else if delta < -epsilonM {
			lossM -= delta
		}
	}
	return gainM, lossM
}

// AdaptiveEpsilon derives the accumulation epsilon from the feature interval
// and the trace's local noise level, capped at half a metre.
func AdaptiveEpsilon(t Trace, intervalM float64) float64 {
	base := 0.05 + 0.02*intervalM
	noise := 0.5 * deltaStddev(t)
	eps := math.Max(base, noise)
	if eps > 0.5 {
		eps = 0.5
	}
	return eps
}

// GainLossRatio reports loss as a percentage of gain. A trace with no
// measured gain reports the balanced sentinel of 100.
func GainLossRatio(gainM, lossM float64) float64 {
	if gainM <= 0 {
		return 100
	}
	return lossM / gainM * 100
}
