package elevation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsClampBounds(t *testing.T) {
	p := Params{
		SpacingM:          -5,
		OutlierMultiplier: 100,
		Alpha:             0,
		WindowMin:         1,
		WindowMax:         9999,
		IntervalM:         0,
		BlendFactor:       2,
		MinGradient:       -10,
		MaxGradient:       10,
		GainThresholdM:    -1,
		LossThresholdM:    50,
		Smoother:          "bogus",
	}.Clamp()

	assert.Equal(t, minSpacingM, p.SpacingM)
	assert.Equal(t, maxMultiplier, p.OutlierMultiplier)
	assert.Equal(t, minAlpha, p.Alpha)
	assert.Equal(t, minWindowBound, p.WindowMin)
	assert.Equal(t, maxWindowBound, p.WindowMax)
	assert.Equal(t, minIntervalM, p.IntervalM)
	assert.Equal(t, 1.0, p.BlendFactor)
	assert.Equal(t, -gradientBound, p.MinGradient)
	assert.Equal(t, gradientBound, p.MaxGradient)
	assert.Equal(t, 0.0, p.GainThresholdM)
	assert.Equal(t, maxThresholdM, p.LossThresholdM)
	assert.Equal(t, SmootherAdaptive, p.Smoother)
}

func TestParamsClampWindowOrdering(t *testing.T) {
	p := Params{WindowMin: 101, WindowMax: 21}.Clamp()
	assert.GreaterOrEqual(t, p.WindowMax, p.WindowMin)
}

func TestParamsClampIsStable(t *testing.T) {
	p := DefaultParams().Clamp()
	assert.Equal(t, p, p.Clamp(), "clamping a clamped config must be a no-op")
}

func TestPresetsAreInBounds(t *testing.T) {
	for name, p := range map[string]Params{
		"default":      DefaultParams(),
		"conservative": ConservativeParams(),
		"moderate":     ModerateParams(),
	} {
		assert.Equal(t, p, p.Clamp(), "preset %s must already satisfy its bounds", name)
	}
}

func TestNewSmootherSelection(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, SmootherAdaptive, p.NewSmoother().Name())

	p.Smoother = SmootherButterworth
	assert.Equal(t, SmootherButterworth, p.NewSmoother().Name())
}
