package triplog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/eventbus"
)

type memStore struct {
	logs      []TripLog
	insertErr error
	stats     *Stats
	statsFrom time.Time
}

func (m *memStore) Insert(ctx context.Context, log *TripLog) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	log.ID = uuid.New()
	log.CreatedAt = time.Now().UTC()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memStore) List(ctx context.Context, userID uuid.UUID, filters *Filters, limit, offset int) ([]TripLog, int, error) {
	var out []TripLog
	for _, log := range m.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	total := len(out)
	if offset >= len(out) {
		return []TripLog{}, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*TripLog, error) {
	for _, log := range m.logs {
		if log.ID == id && log.UserID == userID {
			found := log
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	for i, log := range m.logs {
		if log.ID == id && log.UserID == userID {
			m.logs = append(m.logs[:i], m.logs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Stats(ctx context.Context, userID uuid.UUID, from time.Time) (*Stats, error) {
	m.statsFrom = from
	if m.stats != nil {
		return m.stats, nil
	}
	return &Stats{}, nil
}

type capturePublisher struct {
	subjects []string
	events   []*eventbus.Event
}

func (p *capturePublisher) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return nil
}

func ptr(v float64) *float64 { return &v }

func completedTrip(userID uuid.UUID) *TripLog {
	started := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	return &TripLog{
		UserID:               userID,
		RouteMode:            RouteModeWalking,
		StartName:            "집",
		EndName:              "시청역",
		StartLat:             37.5665,
		StartLng:             126.9780,
		EndLat:               37.5700,
		EndLng:               126.9820,
		TotalDistanceM:       1200,
		CrossingCount:        2,
		UserFactor:           ptr(1.05),
		SlopeFactor:          ptr(1.25),
		WeatherFactor:        ptr(1.1),
		EstimatedSeconds:     1080,
		ActualSeconds:        1150,
		ActiveWalkingSeconds: 980,
		MeasuredSpeedKmh:     ptr(4.0),
		StartedAt:            started,
		EndedAt:              started.Add(20 * time.Minute),
	}
}

func TestRecordPersistsAndPublishes(t *testing.T) {
	store := &memStore{}
	publisher := &capturePublisher{}
	svc := NewService(store, publisher)
	userID := uuid.New()

	saved, err := svc.Record(context.Background(), completedTrip(userID))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	require.Len(t, store.logs, 1)

	require.Len(t, publisher.subjects, 1)
	assert.Equal(t, eventbus.SubjectTripCompleted, publisher.subjects[0])
	assert.Equal(t, eventbus.SubjectTripCompleted, publisher.events[0].Type)
}

func TestRecordEventCarriesRecalibrationInputs(t *testing.T) {
	publisher := &capturePublisher{}
	svc := NewService(&memStore{}, publisher)
	userID := uuid.New()

	saved, err := svc.Record(context.Background(), completedTrip(userID))
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	var data eventbus.TripCompletedData
	require.NoError(t, json.Unmarshal(publisher.events[0].Data, &data))

	assert.Equal(t, saved.ID, data.TripLogID)
	assert.Equal(t, userID.String(), data.UserID)
	require.NotNil(t, data.MeasuredSpeedKmh)
	assert.InDelta(t, 4.0, *data.MeasuredSpeedKmh, 1e-9)
	require.NotNil(t, data.SlopeFactor)
	assert.InDelta(t, 1.25, *data.SlopeFactor, 1e-9)
	require.NotNil(t, data.WeatherFactor)
	assert.InDelta(t, 1.1, *data.WeatherFactor, 1e-9)
	assert.InDelta(t, 980, data.ActiveSeconds, 1e-9)
}

func TestRecordRejectsInvertedTimes(t *testing.T) {
	svc := NewService(&memStore{}, nil)
	trip := completedTrip(uuid.New())
	trip.EndedAt = trip.StartedAt.Add(-time.Minute)

	_, err := svc.Record(context.Background(), trip)
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestRecordSurfacesInsertError(t *testing.T) {
	store := &memStore{insertErr: errors.New("connection refused")}
	svc := NewService(store, nil)

	_, err := svc.Record(context.Background(), completedTrip(uuid.New()))
	require.Error(t, err)
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(&memStore{}, nil)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestDeleteNotFound(t *testing.T) {
	svc := NewService(&memStore{}, nil)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestStatsWindowClampsDays(t *testing.T) {
	store := &memStore{stats: &Stats{TotalTrips: 3}}
	svc := NewService(store, nil)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	stats, err := svc.StatsSummary(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.PeriodDays)
	assert.Equal(t, now.AddDate(0, 0, -30), store.statsFrom)

	stats, err = svc.StatsSummary(context.Background(), uuid.New(), 1000)
	require.NoError(t, err)
	assert.Equal(t, 365, stats.PeriodDays)

	stats, err = svc.StatsSummary(context.Background(), uuid.New(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.PeriodDays)
	assert.Equal(t, 3, stats.TotalTrips)
}

func TestDeltaSeconds(t *testing.T) {
	trip := TripLog{EstimatedSeconds: 1080, ActualSeconds: 1150}
	assert.InDelta(t, 70, trip.DeltaSeconds(), 1e-9)
}
