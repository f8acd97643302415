package crosswalk

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/logger"
)

// Repository handles database operations for crossing reference data
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new crosswalk repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListAll returns every crossing in the reference table.
func (r *Repository) ListAll(ctx context.Context) ([]Crossing, error) {
	query := `
		SELECT id, latitude, longitude, red_seconds, green_seconds
		FROM walk_crossings
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list crossings: %w", err)
	}
	defer rows.Close()

	var crossings []Crossing
	for rows.Next() {
		var c Crossing
		if err := rows.Scan(&c.ID, &c.Lat, &c.Lng, &c.RedSeconds, &c.GreenSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan crossing: %w", err)
		}
		crossings = append(crossings, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read crossings: %w", err)
	}

	return crossings, nil
}

// Count returns the number of stored crossings.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM walk_crossings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count crossings: %w", err)
	}
	return count, nil
}

// SeedFromCSV loads the reference data set into the table when it is empty.
// The CSV carries lat,lng,red,green columns with a header row.
func (r *Repository) SeedFromCSV(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	count, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open crossings seed: %w", err)
	}
	defer file.Close()

	crossings, err := parseCrossingsCSV(file)
	if err != nil {
		return err
	}

	for _, c := range crossings {
		_, err := r.db.Exec(ctx, `
			INSERT INTO walk_crossings (latitude, longitude, red_seconds, green_seconds)
			VALUES ($1, $2, $3, $4)
		`, c.Lat, c.Lng, c.RedSeconds, c.GreenSeconds)
		if err != nil {
			return fmt.Errorf("failed to insert crossing: %w", err)
		}
	}

	logger.Info("seeded crossing reference data",
		zap.String("path", path),
		zap.Int("crossings", len(crossings)),
	)
	return nil
}

func parseCrossingsCSV(reader io.Reader) ([]Crossing, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	var crossings []Crossing
	line := 0
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read crossings csv: %w", err)
		}
		line++
		if line == 1 {
			// header row
			continue
		}
		if len(record) < 4 {
			return nil, fmt.Errorf("crossings csv line %d: expected 4 columns, got %d", line, len(record))
		}

		values := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("crossings csv line %d column %d: %w", line, i+1, err)
			}
			values[i] = v
		}
		crossings = append(crossings, Crossing{
			Lat:          values[0],
			Lng:          values[1],
			RedSeconds:   values[2],
			GreenSeconds: values[3],
		})
	}

	return crossings, nil
}
