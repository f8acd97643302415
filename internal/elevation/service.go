package elevation

import (
	"context"
	"fmt"

	"github.com/waypace/walk-eta/pkg/geo"
)

// Service ties sampling, elevation lookup and slope analysis together.
type Service struct {
	provider Provider
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// ProfileForPath samples the path, resolves elevations and returns the slope
// profile at the given base walking speed.
func (s *Service) ProfileForPath(ctx context.Context, path []geo.Coordinate, baseSpeedMps float64) (Profile, error) {
	sampled := SamplePath(path)
	if len(sampled) < 2 {
		return Profile{BaseSpeedMps: baseSpeedMps}, nil
	}

	elevations, err := s.provider.Elevations(ctx, sampled)
	if err != nil {
		return Profile{}, fmt.Errorf("elevation lookup: %w", err)
	}

	return Analyze(ctx, sampled, elevations, baseSpeedMps)
}
