package geo

import "math"

const earthRadiusM = 6371000.0

// Haversine calculates the great-circle distance in metres between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// PathDistance sums the haversine distances between consecutive points of a
// path. Paths with fewer than two points have zero length.
func PathDistance(path []Coordinate) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += Haversine(path[i-1].Lat, path[i-1].Lng, path[i].Lat, path[i].Lng)
	}
	return total
}
