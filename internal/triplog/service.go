package triplog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/eventbus"
	"github.com/waypace/walk-eta/pkg/logger"
)

const (
	defaultStatsDays = 30
	maxStatsDays     = 365
)

// store is the persistence surface the service needs.
type store interface {
	Insert(ctx context.Context, log *TripLog) error
	List(ctx context.Context, userID uuid.UUID, filters *Filters, limit, offset int) ([]TripLog, int, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*TripLog, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	Stats(ctx context.Context, userID uuid.UUID, from time.Time) (*Stats, error)
}

// Service records completed guidance sessions.
type Service struct {
	repo      store
	publisher eventbus.Publisher
	now       func() time.Time
}

// NewService creates a new trip log service. publisher may be nil; event
// publishing is then skipped and no recalibration happens downstream.
func NewService(repo store, publisher eventbus.Publisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Record persists a finished trip and emits the completion event. The speed
// profile recalibration subscriber picks the event up from there, so a slow
// or failing profile store never delays the log write.
func (s *Service) Record(ctx context.Context, log *TripLog) (*TripLog, error) {
	if log.EndedAt.Before(log.StartedAt) {
		return nil, common.NewBadRequestError("trip ended before it started", nil)
	}
	if err := s.repo.Insert(ctx, log); err != nil {
		return nil, common.NewInternalError("failed to save trip log", err)
	}

	s.publishCompleted(ctx, log)
	return log, nil
}

// List returns a user's trips, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filters *Filters, limit, offset int) ([]TripLog, int, error) {
	logs, total, err := s.repo.List(ctx, userID, filters, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list trip logs", err)
	}
	return logs, total, nil
}

// Get returns one of the user's trips.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*TripLog, error) {
	log, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, common.NewInternalError("failed to load trip log", err)
	}
	if log == nil {
		return nil, common.NewNotFoundError("trip log not found", nil)
	}
	return log, nil
}

// Delete removes one of the user's trips.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return common.NewInternalError("failed to delete trip log", err)
	}
	if !deleted {
		return common.NewNotFoundError("trip log not found", nil)
	}
	return nil
}

// StatsSummary aggregates the user's trips over the trailing day window.
func (s *Service) StatsSummary(ctx context.Context, userID uuid.UUID, days int) (*Stats, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}
	from := s.now().AddDate(0, 0, -days)

	stats, err := s.repo.Stats(ctx, userID, from)
	if err != nil {
		return nil, common.NewInternalError("failed to aggregate trip stats", err)
	}
	stats.PeriodDays = days
	return stats, nil
}

func (s *Service) publishCompleted(ctx context.Context, log *TripLog) {
	if s.publisher == nil {
		return
	}
	event, err := eventbus.NewEvent(eventbus.SubjectTripCompleted, "triplog", eventbus.TripCompletedData{
		TripLogID:        log.ID,
		UserID:           log.UserID.String(),
		MeasuredSpeedKmh: log.MeasuredSpeedKmh,
		SlopeFactor:      log.SlopeFactor,
		WeatherFactor:    log.WeatherFactor,
		ActiveSeconds:    log.ActiveWalkingSeconds,
		DistanceM:        log.TotalDistanceM,
		CompletedAt:      log.EndedAt,
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build trip completed event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, eventbus.SubjectTripCompleted, event); err != nil {
		logger.WarnContext(ctx, "failed to publish trip completed event", zap.Error(err))
	}
}
