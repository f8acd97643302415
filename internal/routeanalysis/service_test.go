package routeanalysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypace/walk-eta/internal/crosswalk"
	"github.com/waypace/walk-eta/internal/elevation"
	"github.com/waypace/walk-eta/internal/slope"
	"github.com/waypace/walk-eta/internal/weather"
	"github.com/waypace/walk-eta/pkg/geo"
)

// stubProfiler serves a fixed slope speed factor for every leg.
type stubProfiler struct {
	speedFactor float64
	avgSlope    float64
	extreme     int
	err         error
	calls       int
}

func (s *stubProfiler) ProfileForPath(ctx context.Context, path []geo.Coordinate, baseSpeedMps float64) (elevation.Profile, error) {
	s.calls++
	if s.err != nil {
		return elevation.Profile{}, s.err
	}
	const distance = 100.0
	return elevation.Profile{
		TotalDistanceM:   distance,
		TotalTimeSeconds: distance / (baseSpeedMps * s.speedFactor),
		AvgSlopePercent:  s.avgSlope,
		BaseSpeedMps:     baseSpeedMps,
		Validation: elevation.Validation{
			IsValid:            s.extreme == 0,
			ExtremeSegments:    s.extreme,
			MaxAbsSlopePercent: s.avgSlope,
		},
	}, nil
}

type stubWeather struct {
	input weather.Input
	err   error
}

func (s *stubWeather) CurrentInput(ctx context.Context, lat, lng float64) (weather.Input, error) {
	if s.err != nil {
		return weather.Input{}, s.err
	}
	return s.input, nil
}

func walkLeg(distanceM float64, steps ...Step) Leg {
	if len(steps) == 0 {
		steps = []Step{{
			Description: "도로를 따라 이동",
			Path: []geo.Coordinate{
				{Lat: 37.5000, Lng: 126.9500},
				{Lat: 37.5000 + distanceM/111194.9, Lng: 126.9500},
			},
			DistanceM: distanceM,
		}}
	}
	return Leg{Mode: ModeWalk, DistanceM: distanceM, Steps: steps}
}

func transitLeg(mode LegMode, seconds float64) Leg {
	return Leg{Mode: mode, DistanceM: 5000, ProviderSeconds: seconds}
}

func flatService() *Service {
	return NewService(nil, &stubProfiler{speedFactor: 1.0}, nil, nil)
}

func TestAnalyzeSingleFlatLegMatchesReferenceTime(t *testing.T) {
	route := &Route{Legs: []Leg{walkLeg(1000)}}

	analysis, err := flatService().AnalyzeRoute(context.Background(), route, Request{})
	require.NoError(t, err)

	assert.InDelta(t, 900, analysis.TotalOriginalSeconds, 0.5)
	assert.InDelta(t, 900, analysis.TotalAdjustedSeconds, 0.5)
	assert.InDelta(t, 0, analysis.DeltaSeconds, 1e-9)
	require.Len(t, analysis.Legs, 1)
	breakdown := analysis.Legs[0]
	assert.Equal(t, LegOutdoor, breakdown.Classification)
	assert.Equal(t, 1.0, breakdown.UserFactor)
	assert.InDelta(t, 1.0, breakdown.SlopeFactor, 1e-9)
	assert.Equal(t, 1.0, breakdown.WeatherFactor)
	assert.True(t, analysis.Validation.IsValid)
}

func TestTransferLegSkipsSlopeAndWeather(t *testing.T) {
	profiler := &stubProfiler{speedFactor: 0.8, avgSlope: 12}
	svc := NewService(nil, profiler, nil, nil)

	route := &Route{Legs: []Leg{
		transitLeg(ModeBus, 600),
		walkLeg(200),
		transitLeg(ModeSubway, 900),
	}}
	observed := 1.0 // slower than reference
	snapshot := &weather.Input{Condition: weather.ConditionRain, TempC: 2, RainMmH: 8}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{
		ObservedSpeedMps: &observed,
		Weather:          snapshot,
	})
	require.NoError(t, err)

	require.Len(t, analysis.Legs, 3)
	transfer := analysis.Legs[1]
	assert.Equal(t, LegTransfer, transfer.Classification)
	assert.Equal(t, 1.0, transfer.SlopeFactor)
	assert.Equal(t, 1.0, transfer.WeatherFactor)
	assert.Greater(t, transfer.UserFactor, 1.0)
	assert.Zero(t, profiler.calls)
}

func TestOutdoorLegCombinesAllFactors(t *testing.T) {
	profiler := &stubProfiler{speedFactor: 0.8, avgSlope: 10}
	svc := NewService(nil, profiler, nil, nil)

	route := &Route{Legs: []Leg{walkLeg(500)}}
	observed := 5.0 / 3.6 // 5 km/h walker
	snapshot := &weather.Input{Condition: weather.ConditionRain, TempC: 15, RainMmH: 8}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{
		ObservedSpeedMps: &observed,
		Weather:          snapshot,
	})
	require.NoError(t, err)

	require.Len(t, analysis.Legs, 1)
	breakdown := analysis.Legs[0]
	assert.Equal(t, LegOutdoor, breakdown.Classification)
	assert.Less(t, breakdown.UserFactor, 1.0)
	assert.InDelta(t, 1/slope.Factor(10), breakdown.SlopeFactor, 1e-9)
	assert.Greater(t, breakdown.WeatherFactor, 1.0)
	assert.InDelta(t,
		breakdown.UserFactor*breakdown.SlopeFactor*breakdown.WeatherFactor,
		breakdown.FinalFactor, 1e-9)
	assert.InDelta(t, breakdown.BaseSeconds*breakdown.FinalFactor, breakdown.AdjustedSeconds, 1e-9)
	assert.InDelta(t, 10, breakdown.AvgSlopePercent, 1e-9)
}

func TestClimbThenDescentLegCorrectsAsFlat(t *testing.T) {
	// A 100 m climb followed by an equal descent: every segment is steep,
	// but the distance-weighted average slope is zero, so the leg gets no
	// slope correction.
	profiler := &stubProfiler{speedFactor: 0.583, avgSlope: 0}
	svc := NewService(nil, profiler, nil, nil)
	route := &Route{Legs: []Leg{walkLeg(200)}}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{})
	require.NoError(t, err)

	require.Len(t, analysis.Legs, 1)
	breakdown := analysis.Legs[0]
	assert.InDelta(t, 1.0, breakdown.SlopeFactor, 1e-9)
	assert.InDelta(t, analysis.TotalOriginalSeconds, analysis.TotalAdjustedSeconds, 1e-9)
	assert.Equal(t, 1, profiler.calls)
}

func TestTransitLegsPassThrough(t *testing.T) {
	route := &Route{Legs: []Leg{transitLeg(ModeBus, 600), walkLeg(100)}}

	analysis, err := flatService().AnalyzeRoute(context.Background(), route, Request{})
	require.NoError(t, err)

	assert.Equal(t, LegTransit, analysis.Legs[0].Classification)
	assert.Equal(t, 600.0, analysis.Legs[0].BaseSeconds)
	assert.Equal(t, 600.0, analysis.Legs[0].AdjustedSeconds)
	// A walk leg at the route edge is outdoor, not a transfer
	assert.Equal(t, LegOutdoor, analysis.Legs[1].Classification)
}

func TestElevationFailureDegradesToOriginalTotals(t *testing.T) {
	svc := NewService(nil, &stubProfiler{err: errors.New("gateway timeout")}, nil, nil)
	route := &Route{Legs: []Leg{transitLeg(ModeBus, 600), walkLeg(100), walkLeg(1000)}}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{})
	require.Error(t, err)
	require.NotNil(t, analysis)

	assert.True(t, analysis.Degraded)
	assert.NotEmpty(t, analysis.DegradedReason)
	assert.Equal(t, analysis.TotalOriginalSeconds, analysis.TotalAdjustedSeconds)
	assert.InDelta(t, 600+100/1.111+1000/1.111, analysis.TotalOriginalSeconds, 0.5)
	assert.Equal(t, 1.0, analysis.Averages.FinalFactor)
}

func TestWeatherLookupFailureIsNeutral(t *testing.T) {
	svc := NewService(nil, &stubProfiler{speedFactor: 1.0}, &stubWeather{err: errors.New("quota exceeded")}, nil)
	route := &Route{Legs: []Leg{walkLeg(500)}}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, analysis.Legs[0].WeatherFactor)
	assert.NotEmpty(t, analysis.Warnings)
}

func TestWeatherLookupUsedWhenNoSnapshot(t *testing.T) {
	source := &stubWeather{input: weather.Input{Condition: weather.ConditionSnow, TempC: -2, SnowCmH: 3}}
	svc := NewService(nil, &stubProfiler{speedFactor: 1.0}, source, nil)
	route := &Route{Legs: []Leg{walkLeg(500)}}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{})
	require.NoError(t, err)

	assert.Greater(t, analysis.Legs[0].WeatherFactor, 1.0)
}

func TestCrossingWaitIsAdditive(t *testing.T) {
	crossings := crosswalk.NewService()
	crossings.SetCrossings([]crosswalk.Crossing{
		{Lat: 37.5000, Lng: 126.9500, RedSeconds: 60, GreenSeconds: 30},
	})
	svc := NewService(nil, &stubProfiler{speedFactor: 1.0}, nil, crossings)

	leg := walkLeg(300,
		Step{
			Description: "횡단보도 를 건너서 이동",
			Path:        []geo.Coordinate{{Lat: 37.5001, Lng: 126.9500}, {Lat: 37.5003, Lng: 126.9500}},
			DistanceM:   30,
		},
		Step{
			Description: "도로를 따라 이동",
			Path:        []geo.Coordinate{{Lat: 37.5003, Lng: 126.9500}, {Lat: 37.5030, Lng: 126.9500}},
			DistanceM:   270,
		},
	)
	route := &Route{Legs: []Leg{leg}}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{})
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.CrossingWait.Count)
	assert.Equal(t, 90.0, analysis.CrossingWait.TotalWaitSeconds)
	expectedBase := 300 / 1.111
	assert.InDelta(t, expectedBase+90, analysis.TotalAdjustedSeconds, 0.5)
	assert.InDelta(t, 90, analysis.DeltaSeconds, 0.5)
}

func TestExtremeSlopeSurfacesWarnings(t *testing.T) {
	profiler := &stubProfiler{speedFactor: 0.5, avgSlope: 65, extreme: 2}
	svc := NewService(nil, profiler, nil, nil)
	route := &Route{Legs: []Leg{walkLeg(200)}}

	analysis, err := svc.AnalyzeRoute(context.Background(), route, Request{})
	require.NoError(t, err)

	assert.False(t, analysis.Validation.IsValid)
	assert.Equal(t, 2, analysis.Validation.ExtremeSegments)
	assert.InDelta(t, 65, analysis.Validation.MaxAbsSlopePercent, 1e-9)
	assert.NotEmpty(t, analysis.Warnings)
}
