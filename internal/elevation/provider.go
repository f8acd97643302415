package elevation

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/config"
	"github.com/waypace/walk-eta/pkg/geo"
	"github.com/waypace/walk-eta/pkg/httpclient"
	"github.com/waypace/walk-eta/pkg/logger"
	"github.com/waypace/walk-eta/pkg/resilience"
)

// Provider resolves elevations for an ordered list of coordinates. The
// returned slice is index-aligned with the request.
type Provider interface {
	Elevations(ctx context.Context, points []geo.Coordinate) ([]float64, error)
}

// OpenElevationProvider queries an Open-Elevation compatible lookup API.
type OpenElevationProvider struct {
	client    *httpclient.Client
	batchSize int
	breaker   *resilience.CircuitBreaker
}

// NewOpenElevationProvider builds the provider. breaker may be nil.
func NewOpenElevationProvider(cfg config.ElevationProviderConfig, breaker *resilience.CircuitBreaker) *OpenElevationProvider {
	return &OpenElevationProvider{
		client:    httpclient.NewClient(cfg.BaseURL, cfg.Timeout(), httpclient.WithDefaultRetry()),
		batchSize: cfg.BatchSize,
		breaker:   breaker,
	}
}

type lookupResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Elevations fetches elevations in request order. Batches are issued
// sequentially so partial results never arrive out of order.
func (p *OpenElevationProvider) Elevations(ctx context.Context, points []geo.Coordinate) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	elevations := make([]float64, 0, len(points))
	for start := 0; start < len(points); start += p.batchSize {
		end := start + p.batchSize
		if end > len(points) {
			end = len(points)
		}

		batch, err := p.lookup(ctx, points[start:end])
		if err != nil {
			return nil, fmt.Errorf("elevation batch %d-%d: %w", start, end, err)
		}
		elevations = append(elevations, batch...)
	}

	logger.DebugContext(ctx, "elevation lookup complete",
		zap.Int("points", len(points)),
		zap.Int("batches", (len(points)+p.batchSize-1)/p.batchSize),
	)
	return elevations, nil
}

func (p *OpenElevationProvider) lookup(ctx context.Context, points []geo.Coordinate) ([]float64, error) {
	locations := make([]string, len(points))
	for i, point := range points {
		locations[i] = strconv.FormatFloat(point.Lat, 'f', 6, 64) + "," +
			strconv.FormatFloat(point.Lng, 'f', 6, 64)
	}
	query := url.Values{}
	query.Set("locations", strings.Join(locations, "|"))

	fetch := func(ctx context.Context) (interface{}, error) {
		var resp lookupResponse
		if err := p.client.GetJSON(ctx, "?"+query.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) != len(points) {
			return nil, fmt.Errorf("expected %d elevations, got %d", len(points), len(resp.Results))
		}
		batch := make([]float64, len(resp.Results))
		for i, result := range resp.Results {
			batch[i] = result.Elevation
		}
		return batch, nil
	}

	var result interface{}
	var err error
	if p.breaker != nil {
		result, err = p.breaker.Execute(ctx, fetch)
	} else {
		result, err = fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}
