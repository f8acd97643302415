// Package triplog persists completed guidance sessions and feeds measured
// walking speeds back into the user's speed profile.
package triplog

import (
	"time"

	"github.com/google/uuid"
)

// Route modes a guidance session can run in.
const (
	RouteModeWalking = "walking"
	RouteModeTransit = "transit"
)

// TripLog is one completed guidance session.
type TripLog struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	RouteMode string `json:"route_mode"`
	StartName string `json:"start_name"`
	EndName   string `json:"end_name"`
	StartLat  float64 `json:"start_lat"`
	StartLng  float64 `json:"start_lng"`
	EndLat    float64 `json:"end_lat"`
	EndLng    float64 `json:"end_lng"`

	TotalDistanceM   float64  `json:"total_distance_m"`
	WalkingDistanceM *float64 `json:"walking_distance_m,omitempty"`
	TransportModes   []string `json:"transport_modes,omitempty"`
	CrossingCount    int      `json:"crossing_count"`

	UserFactor    *float64 `json:"user_factor,omitempty"`
	SlopeFactor   *float64 `json:"slope_factor,omitempty"`
	WeatherFactor *float64 `json:"weather_factor,omitempty"`

	EstimatedSeconds     float64  `json:"estimated_seconds"`
	ActualSeconds        float64  `json:"actual_seconds"`
	ActiveWalkingSeconds float64  `json:"active_walking_seconds"`
	PausedSeconds        float64  `json:"paused_seconds"`
	PauseCount           int      `json:"pause_count"`
	MeasuredSpeedKmh     *float64 `json:"measured_speed_kmh,omitempty"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	CreatedAt time.Time `json:"created_at"`
}

// DeltaSeconds is how far off the estimate was. Positive means the walk took
// longer than predicted.
func (t TripLog) DeltaSeconds() float64 {
	return t.ActualSeconds - t.EstimatedSeconds
}

// Filters narrows a trip log listing.
type Filters struct {
	RouteMode *string
	FromDate  *time.Time
	ToDate    *time.Time
}

// Stats summarises a user's guidance sessions over a day window.
type Stats struct {
	PeriodDays          int      `json:"period_days"`
	TotalTrips          int      `json:"total_trips"`
	WalkingCount        int      `json:"walking_count"`
	TransitCount        int      `json:"transit_count"`
	TotalDistanceKm     float64  `json:"total_distance_km"`
	TotalTimeHours      float64  `json:"total_time_hours"`
	AvgDeltaSeconds     float64  `json:"avg_delta_seconds"`
	AccuracyRatePercent float64  `json:"accuracy_rate_percent"`
	AvgUserFactor       *float64 `json:"avg_user_factor,omitempty"`
	AvgSlopeFactor      *float64 `json:"avg_slope_factor,omitempty"`
	AvgWeatherFactor    *float64 `json:"avg_weather_factor,omitempty"`
}
