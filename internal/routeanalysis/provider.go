package routeanalysis

import (
	"context"
	"fmt"

	"github.com/waypace/walk-eta/pkg/config"
	"github.com/waypace/walk-eta/pkg/geo"
	"github.com/waypace/walk-eta/pkg/httpclient"
	"github.com/waypace/walk-eta/pkg/resilience"
)

// RouteProvider returns a pedestrian route between two points.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination geo.Coordinate, originName, destName string) (*Route, error)
}

// TransitRouteProvider calls an SK Open API compatible transit routing
// upstream and extracts the first itinerary.
type TransitRouteProvider struct {
	client  *httpclient.Client
	apiKey  string
	breaker *resilience.CircuitBreaker
}

// NewTransitRouteProvider builds the route provider. breaker may be nil.
func NewTransitRouteProvider(cfg config.RouteProviderConfig, breaker *resilience.CircuitBreaker) *TransitRouteProvider {
	return &TransitRouteProvider{
		client:  httpclient.NewClient(cfg.BaseURL, cfg.Timeout(), httpclient.WithDefaultRetry()),
		apiKey:  cfg.APIKey,
		breaker: breaker,
	}
}

type routeRequest struct {
	StartX    string `json:"startX"`
	StartY    string `json:"startY"`
	EndX      string `json:"endX"`
	EndY      string `json:"endY"`
	StartName string `json:"startName,omitempty"`
	EndName   string `json:"endName,omitempty"`
	Count     int    `json:"count"`
}

type routeResponse struct {
	MetaData struct {
		Plan struct {
			Itineraries []struct {
				TotalTime     float64 `json:"totalTime"`
				TotalDistance float64 `json:"totalDistance"`
				Legs          []struct {
					Mode        string  `json:"mode"`
					Distance    float64 `json:"distance"`
					SectionTime float64 `json:"sectionTime"`
					Start       struct {
						Name string `json:"name"`
					} `json:"start"`
					End struct {
						Name string `json:"name"`
					} `json:"end"`
					Steps []struct {
						Description string  `json:"description"`
						Linestring  string  `json:"linestring"`
						Distance    float64 `json:"distance"`
					} `json:"steps"`
				} `json:"legs"`
			} `json:"itineraries"`
		} `json:"plan"`
	} `json:"metaData"`
}

// Route fetches the first itinerary for the origin/destination pair.
func (p *TransitRouteProvider) Route(ctx context.Context, origin, destination geo.Coordinate, originName, destName string) (*Route, error) {
	request := routeRequest{
		StartX:    fmt.Sprintf("%f", origin.Lng),
		StartY:    fmt.Sprintf("%f", origin.Lat),
		EndX:      fmt.Sprintf("%f", destination.Lng),
		EndY:      fmt.Sprintf("%f", destination.Lat),
		StartName: originName,
		EndName:   destName,
		Count:     1,
	}
	headers := map[string]string{"appKey": p.apiKey}

	fetch := func(ctx context.Context) (interface{}, error) {
		var resp routeResponse
		if err := p.client.PostJSON(ctx, "/routes", request, headers, &resp); err != nil {
			return nil, fmt.Errorf("route request failed: %w", err)
		}
		itineraries := resp.MetaData.Plan.Itineraries
		if len(itineraries) == 0 {
			return nil, fmt.Errorf("no itinerary between origin and destination")
		}
		return mapItinerary(resp, 0), nil
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
	return result.(*Route), nil
}

func mapItinerary(resp routeResponse, index int) *Route {
	itinerary := resp.MetaData.Plan.Itineraries[index]

	route := &Route{
		TotalDistanceM:  itinerary.TotalDistance,
		ProviderSeconds: itinerary.TotalTime,
	}
	for _, rawLeg := range itinerary.Legs {
		leg := Leg{
			Mode:            LegMode(rawLeg.Mode),
			DistanceM:       rawLeg.Distance,
			ProviderSeconds: rawLeg.SectionTime,
			StartName:       rawLeg.Start.Name,
			EndName:         rawLeg.End.Name,
		}
		for _, rawStep := range rawLeg.Steps {
			leg.Steps = append(leg.Steps, Step{
				Description: rawStep.Description,
				Path:        geo.ParseLinestring(rawStep.Linestring),
				DistanceM:   rawStep.Distance,
			})
		}
		route.Legs = append(route.Legs, leg)
	}
	return route
}
