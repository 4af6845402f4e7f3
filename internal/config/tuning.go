package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ridgeline-data/ascent.report/internal/elevation"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default pipeline values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root configuration for the elevation pipeline. Every
// field is optional: fields omitted from the JSON fall back to the built-in
// defaults, so partial configs are safe.
type TuningConfig struct {
	// Signal conditioning
	SpacingM          *float64 `json:"spacing_m,omitempty"`
	OutlierMultiplier *float64 `json:"outlier_multiplier,omitempty"`
	MedianPrefilter   *bool    `json:"median_prefilter,omitempty"`

	// Smoother selection and knobs
	Smoother  *string  `json:"smoother,omitempty"` // "adaptive" or "butterworth"
	Alpha     *float64 `json:"alpha,omitempty"`
	WindowMin *int     `json:"window_min,omitempty"`
	WindowMax *int     `json:"window_max,omitempty"`
	IntervalM *float64 `json:"interval_m,omitempty"`

	// Gradient post-processing
	BlendGradients *bool    `json:"blend_gradients,omitempty"`
	BlendFactor    *float64 `json:"blend_factor,omitempty"`
	ClampGradients *bool    `json:"clamp_gradients,omitempty"`
	MinGradient    *float64 `json:"min_gradient,omitempty"`
	MaxGradient    *float64 `json:"max_gradient,omitempty"`

	// Accumulation
	GainThresholdM *float64 `json:"gain_threshold_m,omitempty"`
	LossThresholdM *float64 `json:"loss_threshold_m,omitempty"`

	TerrainAdaptive *bool `json:"terrain_adaptive,omitempty"`

	// Sweep harness
	Workers *int `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches from the current directory up through common
// parent directories. Panics if the file cannot be loaded, intended for test
// setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/elevation/sweep/
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that configured values are usable before they reach the
// pipeline's own clamping.
func (c *TuningConfig) Validate() error {
	if c.Smoother != nil {
		switch *c.Smoother {
		case elevation.SmootherAdaptive, elevation.SmootherButterworth:
		default:
			return fmt.Errorf("unknown smoother %q", *c.Smoother)
		}
	}
	if c.SpacingM != nil && *c.SpacingM <= 0 {
		return fmt.Errorf("spacing_m must be positive, got %f", *c.SpacingM)
	}
	if c.OutlierMultiplier != nil && *c.OutlierMultiplier <= 0 {
		return fmt.Errorf("outlier_multiplier must be positive, got %f", *c.OutlierMultiplier)
	}
	if c.BlendFactor != nil && (*c.BlendFactor < 0 || *c.BlendFactor > 1) {
		return fmt.Errorf("blend_factor must be between 0 and 1, got %f", *c.BlendFactor)
	}
	if c.WindowMin != nil && *c.WindowMin < 1 {
		return fmt.Errorf("window_min must be at least 1, got %d", *c.WindowMin)
	}
	if c.WindowMax != nil && c.WindowMin != nil && *c.WindowMax < *c.WindowMin {
		return fmt.Errorf("window_max %d is below window_min %d", *c.WindowMax, *c.WindowMin)
	}
	if c.MinGradient != nil && c.MaxGradient != nil && *c.MinGradient > *c.MaxGradient {
		return fmt.Errorf("min_gradient %f exceeds max_gradient %f", *c.MinGradient, *c.MaxGradient)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// GetWorkers returns the workers value or the default (0, meaning one per
// CPU).
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetSmoother returns the smoother name or the default.
func (c *TuningConfig) GetSmoother() string {
	if c.Smoother == nil {
		return elevation.DefaultParams().Smoother
	}
	return *c.Smoother
}

// Params resolves the configuration against the built-in defaults, yielding
// a complete clamped pipeline configuration.
func (c *TuningConfig) Params() elevation.Params {
	p := elevation.DefaultParams()
	if c.SpacingM != nil {
		p.SpacingM = *c.SpacingM
	}
	if c.OutlierMultiplier != nil {
		p.OutlierMultiplier = *c.OutlierMultiplier
	}
	if c.MedianPrefilter != nil {
		p.MedianPrefilter = *c.MedianPrefilter
	}
	if c.Smoother != nil {
		p.Smoother = *c.Smoother
	}
	if c.Alpha != nil {
		p.Alpha = *c.Alpha
	}
	if c.WindowMin != nil {
		p.WindowMin = *c.WindowMin
	}
	if c.WindowMax != nil {
		p.WindowMax = *c.WindowMax
	}
	if c.IntervalM != nil {
		p.IntervalM = *c.IntervalM
	}
	if c.BlendGradients != nil {
		p.BlendGradients = *c.BlendGradients
	}
	if c.BlendFactor != nil {
		p.BlendFactor = *c.BlendFactor
	}
	if c.ClampGradients != nil {
		p.ClampGradients = *c.ClampGradients
	}
	if c.MinGradient != nil {
		p.MinGradient = *c.MinGradient
	}
	if c.MaxGradient != nil {
		p.MaxGradient = *c.MaxGradient
	}
	if c.GainThresholdM != nil {
		p.GainThresholdM = *c.GainThresholdM
	}
	if c.LossThresholdM != nil {
		p.LossThresholdM = *c.LossThresholdM
	}
	if c.TerrainAdaptive != nil {
		p.TerrainAdaptive = *c.TerrainAdaptive
	}
	return p.Clamp()
}
