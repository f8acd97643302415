package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypace/walk-eta/internal/speedprofile"
)

func clearAt(tempC float64) Input {
	return Input{Condition: ConditionClear, TempC: tempC}
}

func TestCoefficientMildClearNearNeutral(t *testing.T) {
	m := NewModel(false)

	p := m.Coefficient(clearAt(15))

	assert.InDelta(t, 1.0, p.Coefficient, 0.03)
	assert.Empty(t, p.Warnings)
}

func TestCoefficientAlwaysWithinBounds(t *testing.T) {
	m := NewModel(false)

	temps := []float64{-25, -10, 0, 1.5, 10, 20, 30, 42}
	inputs := []Input{}
	for _, temp := range temps {
		inputs = append(inputs,
			Input{Condition: ConditionClear, TempC: temp},
			Input{Condition: ConditionRain, TempC: temp, RainMmH: 50},
			Input{Condition: ConditionSnow, TempC: temp, SnowCmH: 20},
			Input{Condition: ConditionSleet, TempC: temp, RainMmH: 50, SnowCmH: 20},
		)
	}

	for _, input := range inputs {
		p := m.Coefficient(input)
		assert.GreaterOrEqual(t, p.Coefficient, CoefficientMin, "input %+v", input)
		assert.LessOrEqual(t, p.Coefficient, CoefficientMax, "input %+v", input)
	}
}

func TestRainSlowsWalking(t *testing.T) {
	m := NewModel(false)

	dry := m.Coefficient(clearAt(15)).Coefficient
	light := m.Coefficient(Input{Condition: ConditionRain, TempC: 15, RainMmH: 2}).Coefficient
	heavy := m.Coefficient(Input{Condition: ConditionRain, TempC: 15, RainMmH: 20}).Coefficient

	assert.Less(t, light, dry)
	assert.Less(t, heavy, light)
}

func TestSnowSlowsMoreThanRain(t *testing.T) {
	m := NewModel(false)

	rain := m.Coefficient(Input{Condition: ConditionRain, TempC: 0, RainMmH: 5}).Coefficient
	snow := m.Coefficient(Input{Condition: ConditionSnow, TempC: 0, SnowCmH: 3}).Coefficient

	assert.Less(t, snow, rain)
}

func TestFreezingRainWorseThanColdRain(t *testing.T) {
	m := NewModel(false)

	above := m.Coefficient(Input{Condition: ConditionRain, TempC: 1, RainMmH: 5}).Coefficient
	below := m.Coefficient(Input{Condition: ConditionRain, TempC: -1, RainMmH: 5}).Coefficient

	assert.Less(t, below, above)
}

func TestSleetTakesWorseChannel(t *testing.T) {
	m := NewModel(false)

	rain := m.Coefficient(Input{Condition: ConditionRain, TempC: 2, RainMmH: 4}).Coefficient
	snow := m.Coefficient(Input{Condition: ConditionSnow, TempC: 2, SnowCmH: 2}).Coefficient
	sleet := m.Coefficient(Input{Condition: ConditionSleet, TempC: 2, RainMmH: 4, SnowCmH: 2}).Coefficient

	worse := rain
	if snow < worse {
		worse = snow
	}
	assert.Less(t, sleet, worse)
}

func TestSafetyWarnings(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		expected int
	}{
		{
			name:     "freezing rain",
			input:    Input{Condition: ConditionRain, TempC: -2, RainMmH: 3},
			expected: 1,
		},
		{
			name:     "wet snow",
			input:    Input{Condition: ConditionSnow, TempC: 1.5, SnowCmH: 1},
			expected: 1,
		},
		{
			name:     "heavy snowfall",
			input:    Input{Condition: ConditionSnow, TempC: -5, SnowCmH: 4},
			expected: 1,
		},
		{
			name:     "heavy rain",
			input:    Input{Condition: ConditionRain, TempC: 20, RainMmH: 15},
			expected: 1,
		},
		{
			name:     "wet heavy snow stacks warnings",
			input:    Input{Condition: ConditionSnow, TempC: 2, SnowCmH: 3},
			expected: 2,
		},
		{
			name:     "clear day",
			input:    clearAt(18),
			expected: 0,
		},
	}

	m := NewModel(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := m.Coefficient(tt.input)
			assert.Len(t, p.Warnings, tt.expected)
		})
	}
}

func TestPredictDerivesSpeedFromReference(t *testing.T) {
	m := NewModel(false)

	p := m.Predict(1.25, Input{Condition: ConditionRain, TempC: 15, RainMmH: 8})

	assert.Less(t, p.StrideFactor, 1.0)
	assert.Less(t, p.CadenceFactor, 1.0)
	// Unclamped at this intensity, so the coefficient is exactly the product
	assert.InDelta(t, p.StrideFactor*p.CadenceFactor, p.Coefficient, 1e-9)
	assert.InDelta(t, 1.25*p.Coefficient, p.SpeedMps, 1e-9)
	assert.InDelta(t, p.SpeedMps*3.6, p.SpeedKmh, 1e-9)
	assert.InDelta(t, (p.Coefficient-1)*100, p.PercentChange, 1e-9)
}

func TestCoefficientUsesReferenceSpeed(t *testing.T) {
	m := NewModel(false)

	p := m.Coefficient(clearAt(15))

	assert.InDelta(t, speedprofile.ReferenceSpeedMps*p.Coefficient, p.SpeedMps, 1e-9)
}

func TestSmoothingBlendsSuccessiveReadings(t *testing.T) {
	raw := NewModel(false)
	first := raw.Coefficient(clearAt(15)).Coefficient
	second := raw.Coefficient(Input{Condition: ConditionRain, TempC: 15, RainMmH: 20}).Coefficient

	smoothed := NewModel(true)
	got1 := smoothed.Coefficient(clearAt(15)).Coefficient
	got2 := smoothed.Coefficient(Input{Condition: ConditionRain, TempC: 15, RainMmH: 20}).Coefficient

	require.InDelta(t, first, got1, 1e-12)
	expected := (1-smoothingAlpha)*first + smoothingAlpha*second
	assert.InDelta(t, expected, got2, 1e-12)
	// The blend sits strictly between the two raw readings
	assert.Greater(t, got2, second)
	assert.Less(t, got2, first)
}

func TestResetSmoothingDropsHistory(t *testing.T) {
	m := NewModel(true)
	m.Coefficient(Input{Condition: ConditionSnow, TempC: 0, SnowCmH: 3})
	m.ResetSmoothing()

	fresh := m.Coefficient(clearAt(15)).Coefficient
	raw := NewModel(false).Coefficient(clearAt(15)).Coefficient

	assert.InDelta(t, raw, fresh, 1e-12)
}

func TestTimeFactor(t *testing.T) {
	assert.InDelta(t, 1.25, TimeFactor(0.8), 1e-12)
	assert.InDelta(t, 1.0, TimeFactor(1.0), 1e-12)
	assert.Equal(t, 1.0, TimeFactor(0))
	assert.Equal(t, 1.0, TimeFactor(-0.5))
}
