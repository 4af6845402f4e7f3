package sweep

import (
	"fmt"
	"sort"

	"github.com/ridgeline-data/ascent.report/internal/elevation"
)

// SweepParam defines one parameter dimension to sweep. Either Values is
// populated directly, or Start/End/Step describe a numeric range the runner
// expands.
type SweepParam struct {
	Name   string    `json:"name"`             // pipeline knob, e.g. "alpha" or "spacing_m"
	Values []float64 `json:"values,omitempty"` // explicit values

	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`
	Step  float64 `json:"step,omitempty"`
}

// Combo is one enumerated configuration: the resolved pipeline params plus
// the sweep-dimension values that produced them and the combination's index
// in enumeration order. The index doubles as the deterministic ranking
// tiebreak.
type Combo struct {
	Index  int                `json:"index"`
	Values map[string]float64 `json:"values"`
	Params elevation.Params   `json:"params"`
}

// expandSweepParam fills Values from Start/End/Step when no explicit values
// were given.
func expandSweepParam(sp *SweepParam) error {
	if len(sp.Values) > 0 {
		return nil
	}
	if sp.Step <= 0 {
		return fmt.Errorf("step must be positive for range expansion")
	}
	sp.Values = GenerateRange(sp.Start, sp.End, sp.Step)
	if len(sp.Values) == 0 {
		return fmt.Errorf("range %f:%f:%f produced no values", sp.Start, sp.End, sp.Step)
	}
	return nil
}

// applyParam sets a single named knob on the pipeline params. Boolean knobs
// treat any nonzero value as true.
func applyParam(p *elevation.Params, name string, value float64) error {
	switch name {
	case "spacing_m":
		p.SpacingM = value
	case "outlier_multiplier":
		p.OutlierMultiplier = value
	case "alpha":
		p.Alpha = value
	case "window_min":
		p.WindowMin = int(value)
	case "window_max":
		p.WindowMax = int(value)
	case "interval_m":
		p.IntervalM = value
	case "blend_factor":
		p.BlendFactor = value
		p.BlendGradients = value > 0
	case "min_gradient":
		p.MinGradient = value
	case "max_gradient":
		p.MaxGradient = value
	case "clamp_gradients":
		p.ClampGradients = value != 0
	case "gain_threshold_m":
		p.GainThresholdM = value
	case "loss_threshold_m":
		p.LossThresholdM = value
	case "terrain_adaptive":
		p.TerrainAdaptive = value != 0
	case "median_prefilter":
		p.MedianPrefilter = value != 0
	default:
		return fmt.Errorf("unknown sweep parameter %q", name)
	}
	return nil
}

// BuildCombos expands every sweep dimension and returns the full Cartesian
// product as resolved configurations over the given base params. The
// enumeration order is deterministic: the last dimension cycles fastest.
// Returns an error if the total combination count exceeds safe limits.
func BuildCombos(base elevation.Params, params []SweepParam) ([]Combo, error) {
	if len(params) == 0 {
		return []Combo{{Index: 0, Values: map[string]float64{}, Params: base.Clamp()}}, nil
	}

	for i := range params {
		if params[i].Name == "" {
			return nil, fmt.Errorf("sweep parameter %d has no name", i)
		}
		if err := expandSweepParam(&params[i]); err != nil {
			return nil, fmt.Errorf("param %q: %w", params[i].Name, err)
		}
	}

	// Validate total combinations before allocating memory.
	// Using int64 to detect overflow during multiplication.
	const maxCombos = 10000
	total := int64(1)
	for _, p := range params {
		total *= int64(len(p.Values))
		if total > maxCombos || total < 0 {
			return nil, fmt.Errorf("parameter combinations would exceed safe limit of %d", maxCombos)
		}
	}

	combos := make([]Combo, total)
	for i := range combos {
		combos[i] = Combo{Index: i, Values: make(map[string]float64, len(params))}
	}

	repeat := int64(1)
	for dim := len(params) - 1; dim >= 0; dim-- {
		vals := params[dim].Values
		name := params[dim].Name
		cycle := int64(len(vals))
		for i := int64(0); i < total; i++ {
			combos[i].Values[name] = vals[(i/repeat)%cycle]
		}
		repeat *= cycle
	}

	for i := range combos {
		p := base
		// Apply in a stable order so validation errors are reproducible.
		names := make([]string, 0, len(combos[i].Values))
		for name := range combos[i].Values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := applyParam(&p, name, combos[i].Values[name]); err != nil {
				return nil, err
			}
		}
		combos[i].Params = p.Clamp()
	}

	return combos, nil
}
