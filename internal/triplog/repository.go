package triplog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles trip log data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new trip log repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const tripColumns = `id, user_id, route_mode, start_name, end_name,
	start_lat, start_lng, end_lat, end_lng,
	total_distance_m, walking_distance_m, transport_modes, crossing_count,
	user_factor, slope_factor, weather_factor,
	estimated_seconds, actual_seconds, active_walking_seconds,
	paused_seconds, pause_count, measured_speed_kmh,
	started_at, ended_at, created_at`

// Insert writes a new trip log and fills in its generated fields.
func (r *Repository) Insert(ctx context.Context, log *TripLog) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO walk_trip_logs (
			user_id, route_mode, start_name, end_name,
			start_lat, start_lng, end_lat, end_lng,
			total_distance_m, walking_distance_m, transport_modes, crossing_count,
			user_factor, slope_factor, weather_factor,
			estimated_seconds, actual_seconds, active_walking_seconds,
			paused_seconds, pause_count, measured_speed_kmh,
			started_at, ended_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id, created_at`,
		log.UserID, log.RouteMode, log.StartName, log.EndName,
		log.StartLat, log.StartLng, log.EndLat, log.EndLng,
		log.TotalDistanceM, log.WalkingDistanceM, log.TransportModes, log.CrossingCount,
		log.UserFactor, log.SlopeFactor, log.WeatherFactor,
		log.EstimatedSeconds, log.ActualSeconds, log.ActiveWalkingSeconds,
		log.PausedSeconds, log.PauseCount, log.MeasuredSpeedKmh,
		log.StartedAt, log.EndedAt,
	).Scan(&log.ID, &log.CreatedAt)
}

// List returns a user's trip logs, newest first, with the unpaginated total.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, filters *Filters, limit, offset int) ([]TripLog, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	argIdx := 2

	if filters != nil {
		if filters.RouteMode != nil {
			where = append(where, fmt.Sprintf("route_mode = $%d", argIdx))
			args = append(args, *filters.RouteMode)
			argIdx++
		}
		if filters.FromDate != nil {
			where = append(where, fmt.Sprintf("started_at >= $%d", argIdx))
			args = append(args, *filters.FromDate)
			argIdx++
		}
		if filters.ToDate != nil {
			where = append(where, fmt.Sprintf("started_at < $%d", argIdx))
			args = append(args, *filters.ToDate)
			argIdx++
		}
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM walk_trip_logs WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM walk_trip_logs
		WHERE %s
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d`, tripColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []TripLog
	for rows.Next() {
		log, err := scanTrip(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, log)
	}
	return logs, total, rows.Err()
}

// GetByID returns one trip log scoped to its owner. Missing rows map to nil.
func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (*TripLog, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM walk_trip_logs
		WHERE id = $1 AND user_id = $2`, tripColumns), id, userID)

	log, err := scanTrip(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// Delete removes a trip log scoped to its owner.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM walk_trip_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Stats aggregates a user's trips started at or after the window start.
func (r *Repository) Stats(ctx context.Context, userID uuid.UUID, from time.Time) (*Stats, error) {
	stats := &Stats{}
	var totalDistanceM, totalSeconds float64
	var accurateCount int
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN route_mode = 'walking' THEN 1 END),
			COUNT(CASE WHEN route_mode = 'transit' THEN 1 END),
			COALESCE(SUM(total_distance_m), 0),
			COALESCE(SUM(actual_seconds), 0),
			COALESCE(AVG(actual_seconds - estimated_seconds), 0),
			COUNT(CASE WHEN estimated_seconds > 0
				AND ABS(actual_seconds - estimated_seconds) <= 0.2 * estimated_seconds THEN 1 END),
			AVG(user_factor),
			AVG(slope_factor),
			AVG(weather_factor)
		FROM walk_trip_logs
		WHERE user_id = $1 AND started_at >= $2`,
		userID, from,
	).Scan(
		&stats.TotalTrips, &stats.WalkingCount, &stats.TransitCount,
		&totalDistanceM, &totalSeconds, &stats.AvgDeltaSeconds,
		&accurateCount,
		&stats.AvgUserFactor, &stats.AvgSlopeFactor, &stats.AvgWeatherFactor,
	)
	if err != nil {
		return nil, err
	}

	stats.TotalDistanceKm = totalDistanceM / 1000
	stats.TotalTimeHours = totalSeconds / 3600
	if stats.TotalTrips > 0 {
		stats.AccuracyRatePercent = float64(accurateCount) / float64(stats.TotalTrips) * 100
	}
	return stats, nil
}

func scanTrip(row pgx.Row) (TripLog, error) {
	var log TripLog
	err := row.Scan(
		&log.ID, &log.UserID, &log.RouteMode, &log.StartName, &log.EndName,
		&log.StartLat, &log.StartLng, &log.EndLat, &log.EndLng,
		&log.TotalDistanceM, &log.WalkingDistanceM, &log.TransportModes, &log.CrossingCount,
		&log.UserFactor, &log.SlopeFactor, &log.WeatherFactor,
		&log.EstimatedSeconds, &log.ActualSeconds, &log.ActiveWalkingSeconds,
		&log.PausedSeconds, &log.PauseCount, &log.MeasuredSpeedKmh,
		&log.StartedAt, &log.EndedAt, &log.CreatedAt,
	)
	return log, err
}
