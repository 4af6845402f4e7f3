package elevation

import "testing"

func TestClassifyTerrain(t *testing.T) {
	tests := []struct {
		name      string
		gainM     float64
		distanceM float64
		want      TerrainClass
	}{
		{"pancake flat", 50, 10000, TerrainFlat},
		{"just under rolling", 119, 10000, TerrainFlat},
		{"rolling", 200, 10000, TerrainRolling},
		{"hilly", 400, 10000, TerrainHilly},
		{"mountainous", 900, 10000, TerrainMountainous},
		{"short steep track", 70, 1000, TerrainMountainous},
		{"zero distance", 100, 0, TerrainFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTerrain(tt.gainM, tt.distanceM); got != tt.want {
				t.Errorf("ClassifyTerrain(%f, %f) = %v, want %v", tt.gainM, tt.distanceM, got, tt.want)
			}
		})
	}
}

func TestTerrainClassString(t *testing.T) {
	tests := []struct {
		class TerrainClass
		want  string
	}{
		{TerrainFlat, "flat"},
		{TerrainRolling, "rolling"},
		{TerrainHilly, "hilly"},
		{TerrainMountainous, "mountainous"},
		{TerrainClass(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParamsForTerrainMonotone(t *testing.T) {
	// Flatter terrain smooths harder: wider windows, tighter gradient caps,
	// lower spike thresholds.
	classes := []TerrainClass{TerrainFlat, TerrainRolling, TerrainHilly, TerrainMountainous}
	for i := 1; i < len(classes); i++ {
		prev := ParamsForTerrain(classes[i-1])
		cur := ParamsForTerrain(classes[i])
		if cur.WindowSize >= prev.WindowSize {
			t.Errorf("%v window %d should shrink from %v window %d",
				classes[i], cur.WindowSize, classes[i-1], prev.WindowSize)
		}
		if cur.MaxGradient <= prev.MaxGradient {
			t.Errorf("%v gradient cap should grow", classes[i])
		}
		if cur.SpikeThresholdM <= prev.SpikeThresholdM {
			t.Errorf("%v spike threshold should grow", classes[i])
		}
	}
}

func TestRemoveSpikes(t *testing.T) {
	tr := traceFrom(
		[]float64{0, 10, 20, 30, 40},
		[]float64{100, 100, 110, 100, 100},
	)
	out := RemoveSpikes(tr, 5)
	if out[2].ElevationM != 100 {
		t.Errorf("spike elevation = %f, want 100", out[2].ElevationM)
	}
}

func TestRemoveSpikesKeepsRealClimbs(t *testing.T) {
	// Monotone climbing deltas share a sign; nothing qualifies as a spike.
	tr := traceFrom(
		[]float64{0, 10, 20, 30},
		[]float64{100, 110, 120, 130},
	)
	out := RemoveSpikes(tr, 5)
	for i := range tr {
		if out[i] != tr[i] {
			t.Fatalf("climb altered at %d", i)
		}
	}
}

func TestRemoveSpikesBelowThreshold(t *testing.T) {
	tr := traceFrom(
		[]float64{0, 10, 20, 30, 40},
		[]float64{100, 100, 103, 100, 100},
	)
	out := RemoveSpikes(tr, 5)
	if out[2].ElevationM != 103 {
		t.Errorf("sub-threshold bump should survive, got %f", out[2].ElevationM)
	}
}

func TestRemoveSpikesGainInflationGuard(t *testing.T) {
	// A descending sawtooth where midpoint replacement would add gain; the
	// pass must bail out rather than inflate the total.
	tr := traceFrom(
		[]float64{0, 10, 20, 30, 40, 50},
		[]float64{100, 80, 94, 70, 86, 60},
	)
	beforeGain, _ := GainLoss(tr)
	out := RemoveSpikes(tr, 6)
	afterGain, _ := GainLoss(out)
	if afterGain > beforeGain*1.1+1e-9 {
		t.Errorf("spike removal inflated gain from %f to %f", beforeGain, afterGain)
	}
}
