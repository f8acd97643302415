package geo

import (
	"github.com/uber/h3-go/v4"
)

// H3 resolution levels for spatial indexes.
// See: https://h3geo.org/docs/core-library/restable
const (
	// H3ResolutionCrossing is used for indexing crossing reference points
	// (~175m edge, ~0.11 km²).
	H3ResolutionCrossing = 9

	// H3KRingCrossing is the k-ring radius for crossing lookups. At
	// resolution 9 neighbouring cell centres sit ~300m apart, so k=4
	// reaches past the 0.01 degree (~1.1 km) match radius.
	H3KRingCrossing = 4
)

// LatLngToCell converts latitude/longitude to an H3 cell index at the given
// resolution. Returns the zero cell on invalid input, which callers treat as
// "no cell".
func LatLngToCell(lat, lng float64, resolution int) h3.Cell {
	latLng := h3.NewLatLng(lat, lng)
	cell, err := h3.LatLngToCell(latLng, resolution)
	if err != nil {
		return 0
	}
	return cell
}

// NeighborCells returns the H3 cells within k rings of the given point,
// origin cell included.
func NeighborCells(lat, lng float64, resolution, k int) []h3.Cell {
	origin := LatLngToCell(lat, lng, resolution)
	cells, err := origin.GridDisk(k)
	if err != nil {
		return []h3.Cell{origin}
	}
	return cells
}
