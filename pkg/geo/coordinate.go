package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParseCoordinate parses a "lon,lat" pair as emitted by route providers.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("coordinate %q: expected lon,lat", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: bad longitude: %w", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: bad latitude: %w", s, err)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

// ParseLinestring parses a space-separated list of "lon,lat" pairs. Malformed
// pairs are skipped so a single bad token does not lose the whole geometry.
func ParseLinestring(s string) []Coordinate {
	fields := strings.Fields(s)
	coords := make([]Coordinate, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCoordinate(f)
		if err != nil {
			continue
		}
		coords = append(coords, c)
	}
	return coords
}
