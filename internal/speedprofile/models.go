// Package speedprofile maintains per-user walking speeds, learned from
// completed trips and adjustable by hand.
package speedprofile

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultNormalSpeedKmh is the population average used before any
	// observation exists for a user.
	DefaultNormalSpeedKmh = 4.0
	// DefaultSlowSpeedKmh is the matching comfortable pace.
	DefaultSlowSpeedKmh = 3.2

	// slowRatio derives the slow pace from the normal one.
	slowRatio = 0.8

	// MinManualSpeedKmh and MaxManualSpeedKmh bound user-entered speeds.
	MinManualSpeedKmh = 2.0
	MaxManualSpeedKmh = 8.0

	maxHistoryEntries = 100
)

// ActivityWalking is the default activity a profile is kept for. The schema
// allows more (e.g. jogging) without structural change.
const ActivityWalking = "walking"

// Observation sources recorded in the history.
const (
	SourceTrip   = "trip"
	SourceManual = "manual"
)

// HistoryEntry records one profile update, including the blend that was
// applied, so drift is auditable after the fact.
type HistoryEntry struct {
	SpeedKmh    float64   `json:"speed_kmh"`
	Source      string    `json:"source"`
	ReferenceID string    `json:"reference_id,omitempty"` // e.g. trip log ID
	OldAvgKmh   float64   `json:"old_avg_kmh"`
	NewAvgKmh   float64   `json:"new_avg_kmh"`
	Alpha       float64   `json:"alpha"`
	Count       int       `json:"count"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Profile is a user's walking speed profile for one activity.
type Profile struct {
	UserID         uuid.UUID      `json:"user_id"`
	ActivityType   string         `json:"activity_type"`
	NormalSpeedKmh float64        `json:"normal_speed_kmh"`
	SlowSpeedKmh   float64        `json:"slow_speed_kmh"`
	DataPoints     int            `json:"data_points"`
	History        []HistoryEntry `json:"history,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// DefaultProfile returns the profile used for a user with no stored data.
func DefaultProfile(userID uuid.UUID, activityType string) *Profile {
	if activityType == "" {
		activityType = ActivityWalking
	}
	return &Profile{
		UserID:         userID,
		ActivityType:   activityType,
		NormalSpeedKmh: DefaultNormalSpeedKmh,
		SlowSpeedKmh:   DefaultSlowSpeedKmh,
	}
}
