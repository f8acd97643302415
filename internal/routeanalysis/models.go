// Package routeanalysis corrects a pedestrian route's walking time for the
// user's own pace, terrain slope and current weather, and adds signal wait
// time at crossings.
package routeanalysis

import (
	"github.com/waypace/walk-eta/internal/crosswalk"
	"github.com/waypace/walk-eta/internal/elevation"
	"github.com/waypace/walk-eta/pkg/geo"
)

// LegMode is the travel mode of one route leg.
type LegMode string

const (
	ModeWalk   LegMode = "WALK"
	ModeBus    LegMode = "BUS"
	ModeSubway LegMode = "SUBWAY"
	ModeRail   LegMode = "RAIL"
	ModeTram   LegMode = "TRAM"
)

// IsTransit reports whether the mode is any vehicle-bound mode.
func (m LegMode) IsTransit() bool {
	switch m {
	case ModeBus, ModeSubway, ModeRail, ModeTram:
		return true
	default:
		return false
	}
}

// Step is one instruction within a WALK leg.
type Step struct {
	Description string           `json:"description"`
	Path        []geo.Coordinate `json:"-"`
	DistanceM   float64          `json:"distance_m"`
}

// Leg is one contiguous stretch of a route with a single mode. Immutable
// after construction.
type Leg struct {
	Mode            LegMode `json:"mode"`
	DistanceM       float64 `json:"distance_m"`
	ProviderSeconds float64 `json:"provider_seconds"`
	StartName       string  `json:"start_name"`
	EndName         string  `json:"end_name"`
	Steps           []Step  `json:"steps,omitempty"`
}

// Path flattens all step coordinates of the leg in order.
func (l Leg) Path() []geo.Coordinate {
	var path []geo.Coordinate
	for _, step := range l.Steps {
		path = append(path, step.Path...)
	}
	return path
}

// CrossingEntryPoints returns the first coordinate of each step that
// traverses a signalised crossing.
func (l Leg) CrossingEntryPoints() []geo.Coordinate {
	var points []geo.Coordinate
	for _, step := range l.Steps {
		if crosswalk.IsCrossingStep(step.Description) && len(step.Path) > 0 {
			points = append(points, step.Path[0])
		}
	}
	return points
}

// Route is one provider itinerary.
type Route struct {
	Legs            []Leg   `json:"legs"`
	TotalDistanceM  float64 `json:"total_distance_m"`
	ProviderSeconds float64 `json:"provider_seconds"`
}

// Classification of a WALK leg within a route.
const (
	LegOutdoor  = "outdoor"
	LegTransfer = "transfer"
	LegTransit  = "transit"
)

// LegBreakdown reports how one leg's time was corrected.
type LegBreakdown struct {
	Mode            LegMode  `json:"mode"`
	Classification  string   `json:"classification"`
	DistanceM       float64  `json:"distance_m"`
	BaseSeconds     float64  `json:"base_seconds"`
	AdjustedSeconds float64  `json:"adjusted_seconds"`
	UserFactor      float64  `json:"user_factor"`
	SlopeFactor     float64  `json:"slope_factor"`
	WeatherFactor   float64  `json:"weather_factor"`
	FinalFactor     float64  `json:"final_factor"`
	AvgSlopePercent float64  `json:"avg_slope_percent"`
	Warnings        []string `json:"warnings,omitempty"`
}

// FactorAverages are distance-weighted averages over WALK legs.
type FactorAverages struct {
	UserFactor    float64 `json:"user_factor"`
	SlopeFactor   float64 `json:"slope_factor"`
	WeatherFactor float64 `json:"weather_factor"`
	FinalFactor   float64 `json:"final_factor"`
}

// Analysis is the corrected ETA for one route.
type Analysis struct {
	Legs                 []LegBreakdown       `json:"legs"`
	TotalOriginalSeconds float64              `json:"total_original_seconds"`
	TotalAdjustedSeconds float64              `json:"total_adjusted_seconds"`
	DeltaSeconds         float64              `json:"delta_seconds"`
	Averages             FactorAverages       `json:"averages"`
	CrossingWait         crosswalk.WaitResult `json:"crossing_wait"`
	Validation           elevation.Validation `json:"validation"`
	Warnings             []string             `json:"warnings,omitempty"`
	Degraded             bool                 `json:"degraded,omitempty"`
	DegradedReason       string               `json:"degraded_reason,omitempty"`
}
