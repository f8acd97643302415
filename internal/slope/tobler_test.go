package slope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactorFlatGroundIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, Factor(0), 1e-12)
}

func TestFactorPeaksAtGentleDownhill(t *testing.T) {
	peak := Factor(-5)

	for _, s := range []float64{-20, -10, -6, -4, 0, 5, 10, 20} {
		assert.Less(t, Factor(s), peak, "slope %.0f%% should be slower than -5%%", s)
	}

	// At the optimum the function equals its maximum, 6 km/h over the
	// flat-ground reference.
	assert.InDelta(t, 6.0/(6.0*math.Exp(-0.175)), peak, 1e-12)
}

func TestFactorSymmetryAroundOptimum(t *testing.T) {
	// Tobler is symmetric in |gradient+0.05|, so -5±d give equal factors
	for _, d := range []float64{1, 5, 10, 25} {
		assert.InDelta(t, Factor(-5-d), Factor(-5+d), 1e-12)
	}
}

func TestFactorMonotonicUphill(t *testing.T) {
	prev := Factor(0)
	for _, s := range []float64{5, 10, 20, 30, 40, 50, 60, 70} {
		cur := Factor(s)
		assert.Less(t, cur, prev, "factor should fall as uphill slope grows (%.0f%%)", s)
		prev = cur
	}
}

func TestEvaluateClampsBeyondMax(t *testing.T) {
	result := Evaluate(85)

	assert.True(t, result.Clamped)
	assert.InDelta(t, 70.0, result.SlopePercent, 1e-12)
	assert.InDelta(t, Factor(70), result.Factor, 1e-12)
	assert.NotEmpty(t, result.Warnings)

	down := Evaluate(-120)
	assert.True(t, down.Clamped)
	assert.InDelta(t, -70.0, down.SlopePercent, 1e-12)
}

func TestEvaluateExtremeWarningWithoutClamp(t *testing.T) {
	result := Evaluate(65)

	assert.False(t, result.Clamped)
	assert.Len(t, result.Warnings, 1)

	clamped := Evaluate(75)
	// Clamping to 70 still leaves it in extreme territory
	assert.True(t, clamped.Clamped)
	assert.Len(t, clamped.Warnings, 2)
}

func TestEvaluateModerateSlopeNoWarnings(t *testing.T) {
	result := Evaluate(12)

	assert.False(t, result.Clamped)
	assert.Empty(t, result.Warnings)
	assert.Greater(t, result.Factor, 0.0)
	assert.Less(t, result.Factor, 1.0)
}
