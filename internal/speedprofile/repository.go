package speedprofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for speed profiles
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new speed profile repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get retrieves a profile. Returns (nil, nil) when the user has no stored
// profile for the activity yet.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID, activityType string) (*Profile, error) {
	query := `
		SELECT user_id, activity_type, normal_speed_kmh, slow_speed_kmh,
			   data_points, history, created_at, updated_at
		FROM walk_speed_profiles
		WHERE user_id = $1 AND activity_type = $2
	`

	var profile Profile
	var history []byte
	err := r.db.QueryRow(ctx, query, userID, activityType).Scan(
		&profile.UserID,
		&profile.ActivityType,
		&profile.NormalSpeedKmh,
		&profile.SlowSpeedKmh,
		&profile.DataPoints,
		&history,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get speed profile: %w", err)
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &profile.History); err != nil {
			return nil, fmt.Errorf("failed to decode speed history: %w", err)
		}
	}

	return &profile, nil
}

// Upsert stores the profile, creating it on first write.
func (r *Repository) Upsert(ctx context.Context, profile *Profile) error {
	history, err := json.Marshal(profile.History)
	if err != nil {
		return fmt.Errorf("failed to encode speed history: %w", err)
	}

	query := `
		INSERT INTO walk_speed_profiles (
			user_id, activity_type, normal_speed_kmh, slow_speed_kmh,
			data_points, history
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, activity_type) DO UPDATE SET
			normal_speed_kmh = EXCLUDED.normal_speed_kmh,
			slow_speed_kmh = EXCLUDED.slow_speed_kmh,
			data_points = EXCLUDED.data_points,
			history = EXCLUDED.history,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.ActivityType,
		profile.NormalSpeedKmh,
		profile.SlowSpeedKmh,
		profile.DataPoints,
		history,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert speed profile: %w", err)
	}

	return nil
}
