package elevation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseSpeedMps = 1.111

func flatElevations(n int, value float64) []float64 {
	elevations := make([]float64, n)
	for i := range elevations {
		elevations[i] = value
	}
	return elevations
}

func TestAnalyzeRejectsMismatchedInput(t *testing.T) {
	path := straightPath(5, 10)

	_, err := Analyze(context.Background(), path, flatElevations(4, 0), baseSpeedMps)
	assert.Error(t, err)

	_, err = Analyze(context.Background(), path, flatElevations(5, 0), 0)
	assert.Error(t, err)
}

func TestAnalyzeFlatPath(t *testing.T) {
	path := straightPath(11, 10) // 100 m

	profile, err := Analyze(context.Background(), path, flatElevations(11, 30), baseSpeedMps)
	require.NoError(t, err)

	assert.InDelta(t, 100, profile.TotalDistanceM, 0.5)
	assert.InDelta(t, 100/baseSpeedMps, profile.TotalTimeSeconds, 0.5)
	assert.InDelta(t, 0, profile.AvgSlopePercent, 1e-9)
	assert.InDelta(t, 1.0, profile.SpeedFactor(), 1e-9)
	assert.Zero(t, profile.Validation.ExtremeSegments)
	assert.True(t, profile.Validation.IsValid)
}

func TestAnalyzeConstantUphill(t *testing.T) {
	path := straightPath(11, 10) // 100 m
	elevations := make([]float64, 11)
	for i := range elevations {
		elevations[i] = float64(i) // 10% grade
	}

	profile, err := Analyze(context.Background(), path, elevations, baseSpeedMps)
	require.NoError(t, err)

	assert.InDelta(t, 10, profile.AvgSlopePercent, 0.1)
	assert.Less(t, profile.SpeedFactor(), 1.0)
	assert.Greater(t, profile.TotalTimeSeconds, 100/baseSpeedMps)
	for _, segment := range profile.Segments {
		assert.InDelta(t, 10, segment.SlopePercent, 0.2)
		assert.Less(t, segment.SpeedFactor, 1.0)
	}
}

func TestAnalyzeGentleDownhillIsFaster(t *testing.T) {
	path := straightPath(11, 10)
	elevations := make([]float64, 11)
	for i := range elevations {
		elevations[i] = -0.5 * float64(i) // -5% grade
	}

	profile, err := Analyze(context.Background(), path, elevations, baseSpeedMps)
	require.NoError(t, err)

	assert.Greater(t, profile.SpeedFactor(), 1.0)
	assert.Less(t, profile.TotalTimeSeconds, 100/baseSpeedMps)
}

func TestAnalyzeMergesShortHops(t *testing.T) {
	path := straightPath(21, 4) // 4 m hops, 80 m total

	profile, err := Analyze(context.Background(), path, flatElevations(21, 0), baseSpeedMps)
	require.NoError(t, err)

	require.NotEmpty(t, profile.Segments)
	for i, segment := range profile.Segments {
		if i < len(profile.Segments)-1 {
			assert.GreaterOrEqual(t, segment.DistanceM, minSegmentM)
		}
	}
	assert.InDelta(t, 80, profile.TotalDistanceM, 0.5)
}

func TestAnalyzeFlagsExtremeSlope(t *testing.T) {
	path := straightPath(2, 12)
	elevations := []float64{0, 10} // 83% reported grade

	profile, err := Analyze(context.Background(), path, elevations, baseSpeedMps)
	require.NoError(t, err)

	assert.False(t, profile.Validation.IsValid)
	assert.Equal(t, 1, profile.Validation.ExtremeSegments)
	assert.InDelta(t, 70, profile.Validation.MaxAbsSlopePercent, 0.5)
	require.Len(t, profile.Segments, 1)
	assert.InDelta(t, 70, profile.Segments[0].SlopePercent, 0.5)
}

func TestAnalyzeDegenerateInputs(t *testing.T) {
	profile, err := Analyze(context.Background(), nil, nil, baseSpeedMps)
	require.NoError(t, err)
	assert.Empty(t, profile.Segments)
	assert.Equal(t, 1.0, profile.SpeedFactor())
	assert.True(t, profile.Validation.IsValid)

	single := straightPath(1, 5)
	profile, err = Analyze(context.Background(), single, flatElevations(1, 0), baseSpeedMps)
	require.NoError(t, err)
	assert.Empty(t, profile.Segments)
}
