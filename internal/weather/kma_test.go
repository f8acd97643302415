package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestMapKMAConditions(t *testing.T) {
	tests := []struct {
		name     string
		pty      int
		expected Condition
	}{
		{"no precipitation", 0, ConditionClear},
		{"rain", 1, ConditionRain},
		{"rain/snow mix", 2, ConditionSleet},
		{"snow", 3, ConditionSnow},
		{"shower", 4, ConditionRain},
		{"raindrop", 5, ConditionRain},
		{"raindrop with flakes", 6, ConditionSleet},
		{"snow flurry", 7, ConditionSnow},
		{"unknown code", 42, ConditionClear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := MapKMA(KMAObservation{PTY: tt.pty, T1H: 5})
			assert.Equal(t, tt.expected, input.Condition)
			assert.Equal(t, 5.0, input.TempC)
		})
	}
}

func TestMapKMAIntensities(t *testing.T) {
	input := MapKMA(KMAObservation{PTY: 1, T1H: 12, RN1: 4.5})
	assert.Equal(t, 4.5, input.RainMmH)
	assert.Zero(t, input.SnowCmH)

	input = MapKMA(KMAObservation{PTY: 3, T1H: -3, SNO: 1.2})
	assert.Equal(t, 1.2, input.SnowCmH)
}

func TestMapKMASnowFallbackFromLiquidEquivalent(t *testing.T) {
	// Snow reported only as liquid equivalent
	input := MapKMA(KMAObservation{PTY: 3, T1H: -2, RN1: 2.0})
	assert.InDelta(t, 0.2, input.SnowCmH, 1e-12)

	// Sleet gets the same fallback
	input = MapKMA(KMAObservation{PTY: 2, T1H: 0.5, RN1: 3.0})
	assert.InDelta(t, 0.3, input.SnowCmH, 1e-12)
	assert.Equal(t, 3.0, input.RainMmH)

	// Rain never produces implied snow
	input = MapKMA(KMAObservation{PTY: 1, T1H: 10, RN1: 3.0})
	assert.Zero(t, input.SnowCmH)
}

func TestMapKMAIgnoresNegativeReadings(t *testing.T) {
	input := MapKMA(KMAObservation{PTY: 1, T1H: 10, RN1: -1, SNO: -1})
	assert.Zero(t, input.RainMmH)
	assert.Zero(t, input.SnowCmH)
}

func TestToKMAGridSeoulCityHall(t *testing.T) {
	nx, ny := toKMAGrid(37.5663, 126.9779)
	assert.Equal(t, 60, nx)
	assert.Equal(t, 127, ny)
}

func TestNowcastBaseTime(t *testing.T) {
	// Before minute 40 the previous hour's observation is the latest
	date, hour := nowcastBase(mustTime(t, "2026-01-15T14:25:00+09:00"))
	assert.Equal(t, "20260115", date)
	assert.Equal(t, "1300", hour)

	date, hour = nowcastBase(mustTime(t, "2026-01-15T14:45:00+09:00"))
	assert.Equal(t, "20260115", date)
	assert.Equal(t, "1400", hour)
}
