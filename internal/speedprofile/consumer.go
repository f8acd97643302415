package speedprofile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/eventbus"
	"github.com/waypace/walk-eta/pkg/logger"
	"github.com/waypace/walk-eta/pkg/validation"
)

// minRecalibrationSeconds is the least active walking time a trip needs
// before its measured speed is trusted for recalibration.
const minRecalibrationSeconds = 300

// Recalibrator consumes trip completion events and folds each trip's
// measured speed back into the walker's profile. Subscribe its Handle
// method to the trips.completed subject.
type Recalibrator struct {
	service *Service
}

func NewRecalibrator(service *Service) *Recalibrator {
	return &Recalibrator{service: service}
}

// Handle processes one trip completion. Trips without a usable measurement
// are acked silently; only profile store failures are retried.
func (r *Recalibrator) Handle(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.TripCompletedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.WarnContext(ctx, "malformed trip completed event",
			zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}

	if data.MeasuredSpeedKmh == nil || data.SlopeFactor == nil || data.WeatherFactor == nil {
		return nil
	}
	if data.ActiveSeconds < minRecalibrationSeconds {
		return nil
	}
	if !validation.IsValidObservedSpeed(*data.MeasuredSpeedKmh) {
		logger.DebugContext(ctx, "trip speed outside plausible range, not recalibrating",
			zap.String("trip_log_id", data.TripLogID.String()),
			zap.Float64("measured_speed_kmh", *data.MeasuredSpeedKmh))
		return nil
	}

	userID, err := uuid.Parse(data.UserID)
	if err != nil {
		logger.WarnContext(ctx, "trip completed event with bad user id",
			zap.String("user_id", data.UserID), zap.Error(err))
		return nil
	}

	// undo slope and weather so the profile learns a flat-ground,
	// clear-weather speed
	baseKmh := ReverseBaseSpeed(*data.MeasuredSpeedKmh, *data.SlopeFactor, *data.WeatherFactor)
	if !validation.IsValidObservedSpeed(baseKmh) {
		logger.DebugContext(ctx, "corrected base speed outside plausible range, not recalibrating",
			zap.String("trip_log_id", data.TripLogID.String()),
			zap.Float64("base_speed_kmh", baseKmh))
		return nil
	}

	if _, err := r.service.RecordObservation(ctx, userID, ActivityWalking, baseKmh, data.TripLogID.String()); err != nil {
		return fmt.Errorf("recalibrate profile for trip %s: %w", data.TripLogID, err)
	}

	logger.InfoContext(ctx, "profile recalibrated from trip",
		zap.String("trip_log_id", data.TripLogID.String()),
		zap.Float64("measured_speed_kmh", *data.MeasuredSpeedKmh),
		zap.Float64("base_speed_kmh", baseKmh))
	return nil
}
