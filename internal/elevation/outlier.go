package elevation

// DefaultOutlierMultiplier is the MAD multiplier used when a configuration
// does not override it.
const DefaultOutlierMultiplier = 3.0

// CorrectOutliers detects anomalous elevation samples with a robust gradient
// test and replaces them by linear interpolation between the nearest
// unflagged neighbours. A sample is flagged when the gradient of the segment
// arriving at it deviates from the median gradient by more than
// multiplier·MAD. The test runs on raw gradients so flagged points cannot
// bias later stages. Returns the corrected trace and the number of samples
// replaced.
func CorrectOutliers(t Trace, multiplier float64) (Trace, int) {
	if len(t) < 3 {
		return t, 0
	}
	if multiplier <= 0 {
		multiplier = DefaultOutlierMultiplier
	}

	grads := gradients(t)
	med := median(grads)
	mad := medianAbsDeviation(grads, med)
	if mad < zeroDistanceEps {
		// A majority of identical gradients collapses the MAD to zero;
		// keep the test live so isolated spikes are still caught.
		mad = zeroDistanceEps
	}

	flagged := make([]bool, len(t))
	count := 0
	for i, g := range grads {
		if abs(g-med) > multiplier*mad {
			// The segment (i, i+1) is anomalous; the arriving sample
			// is the suspect.
			flagged[i+1] = true
			count++
		}
	}
	if count == 0 {
		return t, 0
	}

	out := t.Clone()
	for i := range out {
		if !flagged[i] {
			continue
		}
		out[i].ElevationM = interpolateFlagged(t, flagged, i)
	}
	return out, count
}

// interpolateFlagged reconstructs the elevation at index i from the nearest
// unflagged neighbours on each side. When one side has no unflagged sample
// the other side's value is used directly.
func interpolateFlagged(t Trace, flagged []bool, i int) float64 {
	lo := -1
	for j := i - 1; j >= 0; j-- {
		if !flagged[j] {
			lo = j
			break
		}
	}
	hi := -1
	for j := i + 1; j < len(t); j++ {
		if !flagged[j] {
			hi = j
			break
		}
	}

	switch {
	case lo < 0 && hi < 0:
		return t[i].ElevationM
	case lo < 0:
		return t[hi].ElevationM
	case hi < 0:
		return t[lo].ElevationM
	}

	span := t[hi].DistanceM - t[lo].DistanceM
	if span < zeroDistanceEps {
		return t[lo].ElevationM
	}
	frac := (t[i].DistanceM - t[lo].DistanceM) / span
	return t[lo].ElevationM + frac*(t[hi].ElevationM-t[lo].ElevationM)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
