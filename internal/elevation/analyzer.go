package elevation

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/waypace/walk-eta/internal/slope"
	"github.com/waypace/walk-eta/pkg/geo"
	"github.com/waypace/walk-eta/pkg/logger"
)

const (
	// minSegmentM is the minimum segment length. Consecutive vertices are
	// merged until they cover at least this distance, which keeps GPS
	// jitter from producing absurd gradients.
	minSegmentM = 10.0

	// steepSlopePercent is the threshold above which a segment is logged
	// for inspection.
	steepSlopePercent = 30.0

	diagnosticSegments = 10
)

// Segment is a stretch of path with a single representative gradient.
type Segment struct {
	DistanceM        float64 `json:"distance_m"`
	ElevationChangeM float64 `json:"elevation_change_m"`
	SlopePercent     float64 `json:"slope_percent"`
	SpeedFactor      float64 `json:"speed_factor"`
	TimeSeconds      float64 `json:"time_seconds"`
}

// Validation summarises data quality issues found during analysis. IsValid
// means no segment exceeded the extreme-slope threshold after clamping.
type Validation struct {
	IsValid            bool    `json:"is_valid"`
	ExtremeSegments    int     `json:"extreme_segments"`
	MaxAbsSlopePercent float64 `json:"max_abs_slope_percent"`
}

// Profile is the slope analysis of one walking stretch.
type Profile struct {
	Segments         []Segment  `json:"segments"`
	TotalDistanceM   float64    `json:"total_distance_m"`
	TotalTimeSeconds float64    `json:"total_time_seconds"`
	AvgSlopePercent  float64    `json:"avg_slope_percent"`
	BaseSpeedMps     float64    `json:"base_speed_mps"`
	Validation       Validation `json:"validation"`
}

// SpeedFactor is the single multiplier that, applied to the base speed over
// the whole distance, reproduces the segment-by-segment walking time.
func (p Profile) SpeedFactor() float64 {
	if p.TotalTimeSeconds <= 0 || p.TotalDistanceM <= 0 {
		return 1.0
	}
	return p.TotalDistanceM / (p.BaseSpeedMps * p.TotalTimeSeconds)
}

// Analyze builds a slope profile from a sampled path and its elevations.
// points and elevations must be index-aligned.
func Analyze(ctx context.Context, points []geo.Coordinate, elevations []float64, baseSpeedMps float64) (Profile, error) {
	if len(points) != len(elevations) {
		return Profile{}, fmt.Errorf("got %d points but %d elevations", len(points), len(elevations))
	}
	if baseSpeedMps <= 0 {
		return Profile{}, fmt.Errorf("base speed must be positive, got %f", baseSpeedMps)
	}

	profile := Profile{BaseSpeedMps: baseSpeedMps}
	profile.Validation.IsValid = true
	if len(points) < 2 {
		return profile, nil
	}

	var pendingDist, pendingRise float64
	segStartElev := elevations[0]
	for i := 1; i < len(points); i++ {
		pendingDist += geo.Haversine(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
		pendingRise = elevations[i] - segStartElev

		last := i == len(points)-1
		if pendingDist < minSegmentM && !last {
			continue
		}
		if pendingDist <= 0 {
			continue
		}

		segment := buildSegment(pendingDist, pendingRise, baseSpeedMps)
		profile.Segments = append(profile.Segments, segment)
		profile.TotalDistanceM += segment.DistanceM
		profile.TotalTimeSeconds += segment.TimeSeconds
		profile.AvgSlopePercent += segment.SlopePercent * segment.DistanceM

		if abs := math.Abs(segment.SlopePercent); abs > profile.Validation.MaxAbsSlopePercent {
			profile.Validation.MaxAbsSlopePercent = abs
		}
		if math.Abs(segment.SlopePercent) > slope.ExtremeSlopePercent {
			profile.Validation.ExtremeSegments++
		}
		if math.Abs(segment.SlopePercent) > steepSlopePercent {
			logger.WarnContext(ctx, "steep segment",
				zap.Float64("slope_percent", segment.SlopePercent),
				zap.Float64("distance_m", segment.DistanceM),
			)
		}

		pendingDist = 0
		segStartElev = elevations[i]
	}

	if profile.TotalDistanceM > 0 {
		profile.AvgSlopePercent /= profile.TotalDistanceM
	}
	profile.Validation.IsValid = profile.Validation.ExtremeSegments == 0

	logDiagnostics(ctx, profile)
	return profile, nil
}

func buildSegment(distanceM, riseM, baseSpeedMps float64) Segment {
	result := slope.Evaluate(riseM / distanceM * 100.0)
	return Segment{
		DistanceM:        distanceM,
		ElevationChangeM: riseM,
		SlopePercent:     result.SlopePercent,
		SpeedFactor:      result.Factor,
		TimeSeconds:      distanceM / (baseSpeedMps * result.Factor),
	}
}

func logDiagnostics(ctx context.Context, profile Profile) {
	n := len(profile.Segments)
	if n > diagnosticSegments {
		n = diagnosticSegments
	}
	for i := 0; i < n; i++ {
		s := profile.Segments[i]
		logger.DebugContext(ctx, "segment",
			zap.Int("index", i),
			zap.Float64("distance_m", s.DistanceM),
			zap.Float64("slope_percent", s.SlopePercent),
			zap.Float64("factor", s.SpeedFactor),
		)
	}
	logger.DebugContext(ctx, "slope profile",
		zap.Int("segments", len(profile.Segments)),
		zap.Float64("total_distance_m", profile.TotalDistanceM),
		zap.Float64("avg_slope_percent", profile.AvgSlopePercent),
		zap.Int("extreme_segments", profile.Validation.ExtremeSegments),
	)
}
