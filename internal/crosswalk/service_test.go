package crosswalk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypace/walk-eta/pkg/geo"
)

func TestIsCrossingStep(t *testing.T) {
	assert.True(t, IsCrossingStep("횡단보도 를 건너서 이동"))
	assert.True(t, IsCrossingStep("Cross at the crosswalk"))
	assert.False(t, IsCrossingStep("보행자도로 를 따라 이동"))
	assert.False(t, IsCrossingStep(""))
}

func TestExpectedWaitCappedAtFullCycle(t *testing.T) {
	wait := expectedWait(Crossing{RedSeconds: 60, GreenSeconds: 30})
	assert.Equal(t, 90.0, wait)
}

func TestExpectedWaitShortCycle(t *testing.T) {
	// (8 - 7 + 2)^2 / 2 = 4.5, below the 10 s cycle cap
	wait := expectedWait(Crossing{RedSeconds: 2, GreenSeconds: 8})
	assert.InDelta(t, 4.5, wait, 1e-9)
}

func TestExpectedWaitDegenerateTiming(t *testing.T) {
	assert.Zero(t, expectedWait(Crossing{}))
}

func TestWaitAtMatchesNearbyCrossing(t *testing.T) {
	svc := NewService()
	svc.SetCrossings([]Crossing{
		{ID: 1, Lat: 37.5000, Lng: 126.9500, RedSeconds: 60, GreenSeconds: 30},
	})

	// ~0.002 degrees away, inside the match radius
	assert.Equal(t, 90.0, svc.WaitAt(37.5020, 126.9500))

	// Beyond the match radius
	assert.Zero(t, svc.WaitAt(37.5200, 126.9500))
}

func TestWaitAtPicksNearestOfSeveral(t *testing.T) {
	svc := NewService()
	svc.SetCrossings([]Crossing{
		{ID: 1, Lat: 37.5000, Lng: 126.9500, RedSeconds: 60, GreenSeconds: 30},
		{ID: 2, Lat: 37.5008, Lng: 126.9500, RedSeconds: 2, GreenSeconds: 8},
	})

	// The short-cycle crossing is closer to the query point
	assert.InDelta(t, 4.5, svc.WaitAt(37.5009, 126.9500), 1e-9)
}

func TestWaitForPoints(t *testing.T) {
	svc := NewService()
	svc.SetCrossings([]Crossing{
		{ID: 1, Lat: 37.5000, Lng: 126.9500, RedSeconds: 60, GreenSeconds: 30},
		{ID: 2, Lat: 37.5100, Lng: 126.9600, RedSeconds: 2, GreenSeconds: 8},
	})

	result := svc.WaitForPoints([]geo.Coordinate{
		{Lat: 37.5001, Lng: 126.9500}, // matches crossing 1
		{Lat: 37.5101, Lng: 126.9600}, // matches crossing 2
		{Lat: 37.7000, Lng: 127.1000}, // no crossing nearby
	})

	assert.Equal(t, 2, result.Count)
	assert.InDelta(t, 94.5, result.TotalWaitSeconds, 1e-9)
	require.Len(t, result.Details, 2)
	assert.Equal(t, 90.0, result.Details[0].WaitSeconds)
}

func TestServiceEmptyIndex(t *testing.T) {
	svc := NewService()
	assert.Zero(t, svc.Count())
	assert.Zero(t, svc.WaitAt(37.5, 126.95))
}

func TestParseCrossingsCSV(t *testing.T) {
	input := "lat,lng,red,green\n37.5000,126.9500,60,30\n37.5100, 126.9600, 45, 25\n"

	crossings, err := parseCrossingsCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, crossings, 2)
	assert.Equal(t, 37.5, crossings[0].Lat)
	assert.Equal(t, 30.0, crossings[0].GreenSeconds)
	assert.Equal(t, 45.0, crossings[1].RedSeconds)
}

func TestParseCrossingsCSVMalformed(t *testing.T) {
	_, err := parseCrossingsCSV(strings.NewReader("lat,lng,red,green\nnot,a,number,row\n"))
	assert.Error(t, err)

	_, err = parseCrossingsCSV(strings.NewReader("lat,lng\n37.5,126.9\n"))
	assert.Error(t, err)
}
