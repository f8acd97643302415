package elevation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypace/walk-eta/pkg/geo"
	"github.com/waypace/walk-eta/pkg/httpclient"
)

func newTestProvider(t *testing.T, batchSize int, handler http.HandlerFunc) (*OpenElevationProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &OpenElevationProvider{
		client:    httpclient.NewClient(server.URL, 2*time.Second),
		batchSize: batchSize,
	}, server
}

// echoElevations answers every location with its latitude, so ordering
// mistakes show up as value mismatches.
func echoElevations(t *testing.T, batchSizes *[]int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations := strings.Split(r.URL.Query().Get("locations"), "|")
		*batchSizes = append(*batchSizes, len(locations))

		resp := lookupResponse{}
		resp.Results = make([]struct {
			Elevation float64 `json:"elevation"`
		}, len(locations))
		for i, loc := range locations {
			lat, _, found := strings.Cut(loc, ",")
			require.True(t, found)
			parsed, err := strconv.ParseFloat(lat, 64)
			require.NoError(t, err)
			resp.Results[i].Elevation = parsed
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestElevationsBatchesSequentially(t *testing.T) {
	var batchSizes []int
	provider, _ := newTestProvider(t, 3, echoElevations(t, &batchSizes))

	points := make([]geo.Coordinate, 8)
	for i := range points {
		points[i] = geo.Coordinate{Lat: float64(i), Lng: 127}
	}

	elevations, err := provider.Elevations(context.Background(), points)
	require.NoError(t, err)

	require.Len(t, elevations, len(points))
	for i, elevation := range elevations {
		assert.Equal(t, float64(i), elevation)
	}
	assert.Equal(t, []int{3, 3, 2}, batchSizes)
}

func TestElevationsEmptyInput(t *testing.T) {
	provider, _ := newTestProvider(t, 3, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	elevations, err := provider.Elevations(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, elevations)
}

func TestElevationsLengthMismatchFails(t *testing.T) {
	provider, _ := newTestProvider(t, 10, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"elevation":1}]}`))
	})

	_, err := provider.Elevations(context.Background(), []geo.Coordinate{{Lat: 1}, {Lat: 2}})
	assert.ErrorContains(t, err, "expected 2 elevations")
}

func TestElevationsUpstreamErrorPropagates(t *testing.T) {
	provider, _ := newTestProvider(t, 10, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := provider.Elevations(context.Background(), []geo.Coordinate{{Lat: 1}})
	assert.Error(t, err)
}
