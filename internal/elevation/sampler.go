// Package elevation turns route geometry into slope-aware walking segments.
package elevation

import (
	"github.com/waypace/walk-eta/pkg/geo"
)

// Sampling limits. Elevation lookups dominate analysis latency, so short
// paths keep every vertex while long paths are thinned to a target spacing.
const (
	denseThresholdM  = 50.0
	mediumThresholdM = 200.0
	mediumSpacingM   = 10.0
	sparseSpacingM   = 20.0

	maxSamplePoints = 500
	minSamplePoints = 10
)

// SamplePath reduces a path to the points worth an elevation lookup. The
// first and last vertices are always retained.
func SamplePath(path []geo.Coordinate) []geo.Coordinate {
	if len(path) <= 2 {
		return path
	}

	total := geo.PathDistance(path)
	if total < denseThresholdM {
		return capSamples(path)
	}

	spacing := sparseSpacingM
	if total < mediumThresholdM {
		spacing = mediumSpacingM
	}

	sampled := make([]geo.Coordinate, 0, int(total/spacing)+2)
	sampled = append(sampled, path[0])
	var sinceLast float64
	for i := 1; i < len(path)-1; i++ {
		sinceLast += geo.Haversine(path[i-1].Lat, path[i-1].Lng, path[i].Lat, path[i].Lng)
		if sinceLast >= spacing {
			sampled = append(sampled, path[i])
			sinceLast = 0
		}
	}
	sampled = append(sampled, path[len(path)-1])

	if len(sampled) < minSamplePoints && len(path) >= minSamplePoints {
		return capSamples(evenSubset(path, minSamplePoints))
	}

	return capSamples(sampled)
}

// capSamples thins a path to at most maxSamplePoints, keeping endpoints.
func capSamples(path []geo.Coordinate) []geo.Coordinate {
	if len(path) <= maxSamplePoints {
		return path
	}
	return evenSubset(path, maxSamplePoints)
}

// evenSubset picks n points at evenly spaced indices, endpoints included.
func evenSubset(path []geo.Coordinate, n int) []geo.Coordinate {
	if n >= len(path) || n < 2 {
		return path
	}
	subset := make([]geo.Coordinate, 0, n)
	step := float64(len(path)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		subset = append(subset, path[int(float64(i)*step+0.5)])
	}
	subset[n-1] = path[len(path)-1]
	return subset
}
