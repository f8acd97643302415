package elevation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypace/walk-eta/pkg/geo"
)

type fakeProvider struct {
	err      error
	got      []geo.Coordinate
	perPoint float64
}

func (f *fakeProvider) Elevations(ctx context.Context, points []geo.Coordinate) ([]float64, error) {
	f.got = points
	if f.err != nil {
		return nil, f.err
	}
	elevations := make([]float64, len(points))
	for i := range elevations {
		elevations[i] = float64(i) * f.perPoint
	}
	return elevations, nil
}

func TestProfileForPathSamplesBeforeLookup(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider)
	path := straightPath(201, 5) // 1 km

	profile, err := svc.ProfileForPath(context.Background(), path, baseSpeedMps)
	require.NoError(t, err)

	assert.Less(t, len(provider.got), len(path))
	assert.NotEmpty(t, profile.Segments)
	assert.InDelta(t, 1000, profile.TotalDistanceM, 10)
}

func TestProfileForPathPropagatesLookupError(t *testing.T) {
	svc := NewService(&fakeProvider{err: errors.New("service unavailable")})

	_, err := svc.ProfileForPath(context.Background(), straightPath(11, 10), baseSpeedMps)
	assert.ErrorContains(t, err, "elevation lookup")
}

func TestProfileForPathShortPathNeutral(t *testing.T) {
	svc := NewService(&fakeProvider{})

	profile, err := svc.ProfileForPath(context.Background(), straightPath(1, 5), baseSpeedMps)
	require.NoError(t, err)
	assert.Empty(t, profile.Segments)
	assert.Equal(t, 1.0, profile.SpeedFactor())
}
