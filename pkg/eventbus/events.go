package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// TripCompletedData is emitted when a guidance session finishes and its log
// has been written. The profile recalibration subscriber consumes it.
type TripCompletedData struct {
	TripLogID        uuid.UUID `json:"trip_log_id"`
	UserID           string    `json:"user_id"`
	MeasuredSpeedKmh *float64  `json:"measured_speed_kmh,omitempty"`
	SlopeFactor      *float64  `json:"slope_factor,omitempty"`
	WeatherFactor    *float64  `json:"weather_factor,omitempty"`
	ActiveSeconds    float64   `json:"active_seconds"`
	DistanceM        float64   `json:"distance_m"`
	CompletedAt      time.Time `json:"completed_at"`
}

// ProfileUpdatedData is emitted after a speed profile changes, whether from
// trip recalibration or a manual override.
type ProfileUpdatedData struct {
	UserID       string    `json:"user_id"`
	OldSpeedKmh  float64   `json:"old_speed_kmh"`
	NewSpeedKmh  float64   `json:"new_speed_kmh"`
	Source       string    `json:"source"`
	DataPoints   int       `json:"data_points"`
	UpdatedAt    time.Time `json:"updated_at"`
}
