package routeanalysis

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/waypace/walk-eta/internal/crosswalk"
	"github.com/waypace/walk-eta/internal/elevation"
	"github.com/waypace/walk-eta/internal/slope"
	"github.com/waypace/walk-eta/internal/speedprofile"
	"github.com/waypace/walk-eta/internal/weather"
	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/geo"
	"github.com/waypace/walk-eta/pkg/logger"
)

// elevationProfiler produces slope profiles for walking paths.
type elevationProfiler interface {
	ProfileForPath(ctx context.Context, path []geo.Coordinate, baseSpeedMps float64) (elevation.Profile, error)
}

// weatherSource resolves current conditions for a location.
type weatherSource interface {
	CurrentInput(ctx context.Context, lat, lng float64) (weather.Input, error)
}

// Service corrects route walking times. All collaborators except routes may
// be nil, which degrades the respective factor to neutral.
type Service struct {
	routes     RouteProvider
	elevations elevationProfiler
	weather    weatherSource
	crossings  *crosswalk.Service
}

// NewService creates a route analysis service.
func NewService(routes RouteProvider, elevations elevationProfiler, weatherSvc weatherSource, crossings *crosswalk.Service) *Service {
	return &Service{
		routes:     routes,
		elevations: elevations,
		weather:    weatherSvc,
		crossings:  crossings,
	}
}

// Request describes one analysis.
type Request struct {
	Origin           geo.Coordinate
	Destination      geo.Coordinate
	OriginName       string
	DestinationName  string
	ObservedSpeedMps *float64
	Weather          *weather.Input // caller-supplied snapshot wins over lookup
}

// Analyze fetches a route and corrects its walking time.
func (s *Service) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	route, err := s.routes.Route(ctx, req.Origin, req.Destination, req.OriginName, req.DestinationName)
	if err != nil {
		return nil, common.NewDependencyError("route provider unavailable", err)
	}
	return s.AnalyzeRoute(ctx, route, req)
}

// AnalyzeRoute corrects an already-fetched route.
//
// When the elevation provider fails, the returned analysis still carries the
// uncorrected totals with neutral factors, alongside a dependency error, so
// callers can fall back instead of losing the route.
func (s *Service) AnalyzeRoute(ctx context.Context, route *Route, req Request) (*Analysis, error) {
	userFactor := speedprofile.UserSpeedFactor(req.ObservedSpeedMps)
	weatherFactor, weatherWarnings := s.weatherFactor(ctx, req)

	analysis := &Analysis{Warnings: weatherWarnings}
	analysis.Validation.IsValid = true
	var crossingPoints []geo.Coordinate
	var walkDistance float64
	var weightedUser, weightedSlope, weightedWeather, weightedFinal float64

	for i, leg := range route.Legs {
		var breakdown LegBreakdown
		switch {
		case leg.Mode != ModeWalk:
			breakdown = transitBreakdown(leg)
		case isTransferLeg(route.Legs, i):
			breakdown = walkBreakdown(leg, LegTransfer, userFactor, 1.0, 1.0, 0)
		default:
			slopeFactor, avgSlope, validation, err := s.slopeFactor(ctx, leg)
			if err != nil {
				return degradedAnalysis(route, err), common.NewDependencyError("elevation provider unavailable", err)
			}
			mergeValidation(&analysis.Validation, validation)
			if validation.ExtremeSegments > 0 {
				analysis.Warnings = append(analysis.Warnings, fmt.Sprintf(
					"%d segment(s) with slope beyond ±%.0f%%, elevation data may be unreliable",
					validation.ExtremeSegments, 60.0))
			}
			breakdown = walkBreakdown(leg, LegOutdoor, userFactor, slopeFactor, weatherFactor, avgSlope)
			crossingPoints = append(crossingPoints, leg.CrossingEntryPoints()...)
		}

		analysis.Legs = append(analysis.Legs, breakdown)
		analysis.TotalOriginalSeconds += breakdown.BaseSeconds
		analysis.TotalAdjustedSeconds += breakdown.AdjustedSeconds

		if leg.Mode == ModeWalk {
			walkDistance += leg.DistanceM
			weightedUser += breakdown.UserFactor * leg.DistanceM
			weightedSlope += breakdown.SlopeFactor * leg.DistanceM
			weightedWeather += breakdown.WeatherFactor * leg.DistanceM
			weightedFinal += breakdown.FinalFactor * leg.DistanceM
		}
	}

	if walkDistance > 0 {
		analysis.Averages = FactorAverages{
			UserFactor:    weightedUser / walkDistance,
			SlopeFactor:   weightedSlope / walkDistance,
			WeatherFactor: weightedWeather / walkDistance,
			FinalFactor:   weightedFinal / walkDistance,
		}
	} else {
		analysis.Averages = neutralAverages()
	}

	if s.crossings != nil {
		analysis.CrossingWait = s.crossings.WaitForPoints(crossingPoints)
		analysis.TotalAdjustedSeconds += analysis.CrossingWait.TotalWaitSeconds
	}
	analysis.DeltaSeconds = analysis.TotalAdjustedSeconds - analysis.TotalOriginalSeconds

	logger.InfoContext(ctx, "route analyzed",
		zap.Int("legs", len(route.Legs)),
		zap.Float64("original_seconds", analysis.TotalOriginalSeconds),
		zap.Float64("adjusted_seconds", analysis.TotalAdjustedSeconds),
		zap.Float64("crossing_wait_seconds", analysis.CrossingWait.TotalWaitSeconds),
	)
	return analysis, nil
}

// weatherFactor resolves the weather time factor for the request. Weather is
// strictly best-effort: lookup failure degrades to neutral with a warning.
func (s *Service) weatherFactor(ctx context.Context, req Request) (float64, []string) {
	var input weather.Input
	switch {
	case req.Weather != nil:
		input = *req.Weather
	case s.weather != nil:
		fetched, err := s.weather.CurrentInput(ctx, req.Origin.Lat, req.Origin.Lng)
		if err != nil {
			logger.WarnContext(ctx, "weather unavailable, using neutral factor", zap.Error(err))
			return 1.0, []string{"weather data unavailable, no weather correction applied"}
		}
		input = fetched
	default:
		return 1.0, nil
	}

	prediction := weather.NewModel(false).Coefficient(input)
	return weather.TimeFactor(prediction.Coefficient), prediction.Warnings
}

// slopeFactor analyses a leg's path and returns its slope time factor. The
// leg is treated as one gradient: the profile's distance-weighted average
// slope goes through the hiking function, so a climb-then-descent leg with a
// level net profile corrects like flat ground.
func (s *Service) slopeFactor(ctx context.Context, leg Leg) (float64, float64, elevation.Validation, error) {
	path := leg.Path()
	if s.elevations == nil || len(path) < 2 {
		return 1.0, 0, elevation.Validation{IsValid: true}, nil
	}

	profile, err := s.elevations.ProfileForPath(ctx, path, speedprofile.ReferenceSpeedMps)
	if err != nil {
		return 0, 0, elevation.Validation{}, err
	}

	speedFactor := slope.Factor(profile.AvgSlopePercent)
	if speedFactor <= 0 {
		return 1.0, profile.AvgSlopePercent, profile.Validation, nil
	}
	return 1.0 / speedFactor, profile.AvgSlopePercent, profile.Validation, nil
}

// baseSeconds recalculates a WALK leg's time at the reference speed,
// discarding the provider's own estimate.
func baseSeconds(distanceM float64) float64 {
	if distanceM <= 0 {
		return 0
	}
	return distanceM / speedprofile.ReferenceSpeedMps
}

// isTransferLeg reports whether the WALK leg at index i is a station
// transfer, i.e. sandwiched between two transit legs.
func isTransferLeg(legs []Leg, i int) bool {
	return i > 0 && i < len(legs)-1 &&
		legs[i-1].Mode.IsTransit() && legs[i+1].Mode.IsTransit()
}

func transitBreakdown(leg Leg) LegBreakdown {
	return LegBreakdown{
		Mode:            leg.Mode,
		Classification:  LegTransit,
		DistanceM:       leg.DistanceM,
		BaseSeconds:     leg.ProviderSeconds,
		AdjustedSeconds: leg.ProviderSeconds,
		UserFactor:      1.0,
		SlopeFactor:     1.0,
		WeatherFactor:   1.0,
		FinalFactor:     1.0,
	}
}

func walkBreakdown(leg Leg, classification string, userFactor, slopeFactor, weatherFactor, avgSlope float64) LegBreakdown {
	base := baseSeconds(leg.DistanceM)
	final := userFactor * slopeFactor * weatherFactor
	return LegBreakdown{
		Mode:            leg.Mode,
		Classification:  classification,
		DistanceM:       leg.DistanceM,
		BaseSeconds:     base,
		AdjustedSeconds: base * final,
		UserFactor:      userFactor,
		SlopeFactor:     slopeFactor,
		WeatherFactor:   weatherFactor,
		FinalFactor:     final,
		AvgSlopePercent: avgSlope,
	}
}

// degradedAnalysis builds the fallback result returned alongside an
// elevation dependency error: original totals, neutral factors.
func degradedAnalysis(route *Route, cause error) *Analysis {
	analysis := &Analysis{
		Degraded:       true,
		DegradedReason: cause.Error(),
		Averages:       neutralAverages(),
	}
	for _, leg := range route.Legs {
		var breakdown LegBreakdown
		if leg.Mode == ModeWalk {
			breakdown = walkBreakdown(leg, LegOutdoor, 1.0, 1.0, 1.0, 0)
		} else {
			breakdown = transitBreakdown(leg)
		}
		analysis.Legs = append(analysis.Legs, breakdown)
		analysis.TotalOriginalSeconds += breakdown.BaseSeconds
		analysis.TotalAdjustedSeconds += breakdown.BaseSeconds
	}
	return analysis
}

func neutralAverages() FactorAverages {
	return FactorAverages{UserFactor: 1.0, SlopeFactor: 1.0, WeatherFactor: 1.0, FinalFactor: 1.0}
}

func mergeValidation(total *elevation.Validation, leg elevation.Validation) {
	total.ExtremeSegments += leg.ExtremeSegments
	total.MaxAbsSlopePercent = math.Max(total.MaxAbsSlopePercent, leg.MaxAbsSlopePercent)
	total.IsValid = total.ExtremeSegments == 0
}
