package elevation

// TerrainClass buckets a track by its raw gain per kilometre. Thresholds that
// make sense on rolling terrain destroy signal on mountain descents, so
// several pipeline knobs carry per-class defaults.
type TerrainClass int

const (
	TerrainFlat TerrainClass = iota
	TerrainRolling
	TerrainHilly
	TerrainMountainous
)

// Gain-per-km boundaries between terrain classes, in metres per kilometre.
const (
	flatMaxGainPerKm    = 12.0
	rollingMaxGainPerKm = 30.0
	hillyMaxGainPerKm   = 60.0
)

func (c TerrainClass) String() string {
	switch c {
	case TerrainFlat:
		return "flat"
	case TerrainRolling:
		return "rolling"
	case TerrainHilly:
		return "hilly"
	case TerrainMountainous:
		return "mountainous"
	}
	return "unknown"
}

// ClassifyTerrain buckets a track by its naive gain per kilometre of
// distance. Tracks shorter than a kilometre are still classified by the
// extrapolated rate.
func ClassifyTerrain(gainM, distanceM float64) TerrainClass {
	if distanceM <= 0 {
		return TerrainFlat
	}
	perKm := gainM / (distanceM / 1000)
	switch {
	case perKm < flatMaxGainPerKm:
		return TerrainFlat
	case perKm < rollingMaxGainPerKm:
		return TerrainRolling
	case perKm < hillyMaxGainPerKm:
		return TerrainHilly
	default:
		return TerrainMountainous
	}
}

// TerrainParams are the smoothing knobs that vary with terrain class.
type TerrainParams struct {
	WindowSize      int
	MaxGradient     float64
	SpikeThresholdM float64
}

// ParamsForTerrain returns the per-class smoothing defaults. Flatter terrain
// gets wider windows and tighter gradient caps; mountainous terrain keeps the
// signal and only rejects extreme spikes.
func ParamsForTerrain(c TerrainClass) TerrainParams {
	switch c {
	case TerrainFlat:
		return TerrainParams{WindowSize: 90, MaxGradient: 0.06, SpikeThresholdM: 3}
	case TerrainRolling:
		return TerrainParams{WindowSize: 45, MaxGradient: 0.12, SpikeThresholdM: 4}
	case TerrainHilly:
		return TerrainParams{WindowSize: 21, MaxGradient: 0.18, SpikeThresholdM: 6}
	default:
		return TerrainParams{WindowSize: 15, MaxGradient: 0.25, SpikeThresholdM: 8}
	}
}

// RemoveSpikes replaces single-sample up-down spikes with the midpoint of
// their neighbours. A sample is a spike when both adjacent deltas exceed the
// threshold with opposite signs. The pass is skipped entirely if it would
// inflate total gain by more than 10%, which indicates the "spikes" were
// real structure.
func RemoveSpikes(t Trace, thresholdM float64) Trace {
	if len(t) < 3 || thresholdM <= 0 {
		return t
	}

	out := t.Clone()
	for i := 1; i < len(out)-1; i++ {
		prev := out[i].ElevationM - out[i-1].ElevationM
		next := out[i+1].ElevationM - out[i].ElevationM
		if abs(prev) > thresholdM && abs(next) > thresholdM && (prev > 0) != (next > 0) {
			out[i].ElevationM = (out[i-1].ElevationM + out[i+1].ElevationM) / 2
		}
	}

	beforeGain, _ := GainLoss(t)
	afterGain, _ := GainLoss(out)
	if beforeGain > 0 && afterGain > beforeGain*1.1 {
		return t
	}
	return out
}
