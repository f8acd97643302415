package elevation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypace/walk-eta/pkg/geo"
)

// metresPerDegreeLat at the equator for the sphere radius used by Haversine.
const metresPerDegreeLat = 111194.9

// straightPath builds a north-going path with the given step length.
func straightPath(points int, stepM float64) []geo.Coordinate {
	path := make([]geo.Coordinate, points)
	for i := range path {
		path[i] = geo.Coordinate{Lat: float64(i) * stepM / metresPerDegreeLat, Lng: 127.0}
	}
	return path
}

func TestSamplePathShortPathKeepsEveryVertex(t *testing.T) {
	path := straightPath(12, 4) // 44 m

	sampled := SamplePath(path)

	assert.Equal(t, path, sampled)
}

func TestSamplePathThinsLongPath(t *testing.T) {
	path := straightPath(201, 5) // 1 km at 5 m resolution

	sampled := SamplePath(path)

	require.GreaterOrEqual(t, len(sampled), minSamplePoints)
	assert.Less(t, len(sampled), len(path))
	assert.Equal(t, path[0], sampled[0])
	assert.Equal(t, path[len(path)-1], sampled[len(sampled)-1])

	// Spacing should be close to the 20 m target
	avgSpacing := geo.PathDistance(sampled) / float64(len(sampled)-1)
	assert.InDelta(t, sparseSpacingM, avgSpacing, 5)
}

func TestSamplePathMediumPathUsesTighterSpacing(t *testing.T) {
	path := straightPath(31, 5) // 150 m

	sampled := SamplePath(path)

	avgSpacing := geo.PathDistance(sampled) / float64(len(sampled)-1)
	assert.InDelta(t, mediumSpacingM, avgSpacing, 3)
}

func TestSamplePathEnforcesMinimum(t *testing.T) {
	path := straightPath(20, 3) // 57 m, would thin to a handful of points

	sampled := SamplePath(path)

	assert.Len(t, sampled, minSamplePoints)
	assert.Equal(t, path[0], sampled[0])
	assert.Equal(t, path[len(path)-1], sampled[len(sampled)-1])
}

func TestSamplePathCapsTotalPoints(t *testing.T) {
	path := straightPath(4001, 5) // 20 km

	sampled := SamplePath(path)

	assert.Len(t, sampled, maxSamplePoints)
	assert.Equal(t, path[0], sampled[0])
	assert.Equal(t, path[len(path)-1], sampled[len(sampled)-1])
}

func TestSamplePathTinyInputsPassThrough(t *testing.T) {
	assert.Empty(t, SamplePath(nil))
	single := straightPath(1, 5)
	assert.Equal(t, single, SamplePath(single))
	pair := straightPath(2, 5)
	assert.Equal(t, pair, SamplePath(pair))
}
