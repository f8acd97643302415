package speedprofile

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/eventbus"
	"github.com/waypace/walk-eta/pkg/logger"
	"github.com/waypace/walk-eta/pkg/validation"
)

// store is the persistence surface the service needs.
type store interface {
	Get(ctx context.Context, userID uuid.UUID, activityType string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}

// Service applies speed observations to user profiles.
type Service struct {
	repo      store
	publisher eventbus.Publisher
	now       func() time.Time
}

// NewService creates a new speed profile service. publisher may be nil.
func NewService(repo store, publisher eventbus.Publisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetProfile returns the stored profile, or the population default when the
// user has none yet.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID, activityType string) (*Profile, error) {
	profile, err := s.repo.Get(ctx, userID, normalizeActivity(activityType))
	if err != nil {
		return nil, common.NewInternalError("failed to load speed profile", err)
	}
	if profile == nil {
		return DefaultProfile(userID, activityType), nil
	}
	return profile, nil
}

// RecordObservation folds a reference-equivalent walking speed into the
// user's profile. The learning rate shrinks as observations accumulate, so
// early trips move the estimate quickly while later ones only nudge it.
func (s *Service) RecordObservation(ctx context.Context, userID uuid.UUID, activityType string, observedKmh float64, referenceID string) (*Profile, error) {
	if !validation.IsValidObservedSpeed(observedKmh) {
		return nil, common.NewBadRequestError(
			fmt.Sprintf("observed speed %.2f km/h outside plausible walking range", observedKmh), nil)
	}

	profile, err := s.repo.Get(ctx, userID, normalizeActivity(activityType))
	if err != nil {
		return nil, common.NewInternalError("failed to load speed profile", err)
	}

	observedKmh = round2(observedKmh)
	var oldSpeed, alpha float64
	if profile == nil {
		profile = DefaultProfile(userID, activityType)
		oldSpeed = 0
		alpha = 1.0
		profile.NormalSpeedKmh = observedKmh
	} else {
		oldSpeed = profile.NormalSpeedKmh
		alpha = learningRate(profile.DataPoints)
		profile.NormalSpeedKmh = round2((1-alpha)*profile.NormalSpeedKmh + alpha*observedKmh)
	}
	profile.SlowSpeedKmh = round2(profile.NormalSpeedKmh * slowRatio)
	profile.DataPoints++

	appendHistory(profile, HistoryEntry{
		SpeedKmh:    observedKmh,
		Source:      SourceTrip,
		ReferenceID: referenceID,
		OldAvgKmh:   oldSpeed,
		NewAvgKmh:   profile.NormalSpeedKmh,
		Alpha:       alpha,
		Count:       profile.DataPoints,
		RecordedAt:  s.now().UTC(),
	})

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, common.NewInternalError("failed to save speed profile", err)
	}

	s.publishUpdate(ctx, profile, oldSpeed, SourceTrip)
	return profile, nil
}

// SetManualSpeed replaces the user's speed with a hand-entered value, no
// blending. slowKmh overrides the derived slow pace when non-nil.
func (s *Service) SetManualSpeed(ctx context.Context, userID uuid.UUID, activityType string, speedKmh float64, slowKmh *float64) (*Profile, error) {
	if speedKmh < MinManualSpeedKmh || speedKmh > MaxManualSpeedKmh {
		return nil, common.NewBadRequestError(
			fmt.Sprintf("speed must be between %.1f and %.1f km/h", MinManualSpeedKmh, MaxManualSpeedKmh), nil)
	}
	if slowKmh != nil && (*slowKmh < MinManualSpeedKmh || *slowKmh > MaxManualSpeedKmh) {
		return nil, common.NewBadRequestError(
			fmt.Sprintf("slow speed must be between %.1f and %.1f km/h", MinManualSpeedKmh, MaxManualSpeedKmh), nil)
	}

	profile, err := s.repo.Get(ctx, userID, normalizeActivity(activityType))
	if err != nil {
		return nil, common.NewInternalError("failed to load speed profile", err)
	}
	if profile == nil {
		profile = DefaultProfile(userID, activityType)
	}

	oldSpeed := profile.NormalSpeedKmh
	profile.NormalSpeedKmh = round2(speedKmh)
	if slowKmh != nil {
		profile.SlowSpeedKmh = round2(*slowKmh)
	} else {
		profile.SlowSpeedKmh = round2(profile.NormalSpeedKmh * slowRatio)
	}
	profile.DataPoints++

	appendHistory(profile, HistoryEntry{
		SpeedKmh:   profile.NormalSpeedKmh,
		Source:     SourceManual,
		OldAvgKmh:  oldSpeed,
		NewAvgKmh:  profile.NormalSpeedKmh,
		Alpha:      1.0,
		Count:      profile.DataPoints,
		RecordedAt: s.now().UTC(),
	})

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, common.NewInternalError("failed to save speed profile", err)
	}

	s.publishUpdate(ctx, profile, oldSpeed, SourceManual)
	return profile, nil
}

// History returns the most recent observations, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, activityType string, limit int) ([]HistoryEntry, error) {
	profile, err := s.repo.Get(ctx, userID, normalizeActivity(activityType))
	if err != nil {
		return nil, common.NewInternalError("failed to load speed profile", err)
	}
	if profile == nil {
		return []HistoryEntry{}, nil
	}

	history := profile.History
	reversed := make([]HistoryEntry, len(history))
	for i, entry := range history {
		reversed[len(history)-1-i] = entry
	}
	if limit > 0 && limit < len(reversed) {
		reversed = reversed[:limit]
	}
	return reversed, nil
}

// learningRate returns the EMA weight for the next observation given how
// many observations came before it.
func learningRate(dataPoints int) float64 {
	switch {
	case dataPoints <= 3:
		return 0.50
	case dataPoints <= 10:
		return 0.40
	case dataPoints <= 20:
		return 0.30
	case dataPoints <= 50:
		return 0.20
	default:
		return 0.15
	}
}

func appendHistory(profile *Profile, entry HistoryEntry) {
	profile.History = append(profile.History, entry)
	if len(profile.History) > maxHistoryEntries {
		profile.History = profile.History[len(profile.History)-maxHistoryEntries:]
	}
}

func normalizeActivity(activityType string) string {
	if activityType == "" {
		return ActivityWalking
	}
	return activityType
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Service) publishUpdate(ctx context.Context, profile *Profile, oldSpeed float64, source string) {
	if s.publisher == nil {
		return
	}

	event, err := eventbus.NewEvent(eventbus.SubjectProfileUpdated, "speedprofile", eventbus.ProfileUpdatedData{
		UserID:      profile.UserID.String(),
		OldSpeedKmh: oldSpeed,
		NewSpeedKmh: profile.NormalSpeedKmh,
		Source:      source,
		DataPoints:  profile.DataPoints,
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build profile update event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, eventbus.SubjectProfileUpdated, event); err != nil {
		logger.WarnContext(ctx, "failed to publish profile update", zap.Error(err))
	}
}
