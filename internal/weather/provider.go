package weather

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/config"
	"github.com/waypace/walk-eta/pkg/httpclient"
	"github.com/waypace/walk-eta/pkg/logger"
	"github.com/waypace/walk-eta/pkg/resilience"
)

// Provider fetches the current observation for a location.
type Provider interface {
	Current(ctx context.Context, lat, lng float64) (KMAObservation, error)
}

// KMAProvider calls the KMA ultra-short-term nowcast API.
type KMAProvider struct {
	client  *httpclient.Client
	apiKey  string
	breaker *resilience.CircuitBreaker
	now     func() time.Time
}

// NewKMAProvider builds the nowcast provider. breaker may be nil when
// resilience is disabled.
func NewKMAProvider(cfg config.WeatherProviderConfig, breaker *resilience.CircuitBreaker) *KMAProvider {
	return &KMAProvider{
		client:  httpclient.NewClient(cfg.BaseURL, cfg.Timeout(), httpclient.WithDefaultRetry()),
		apiKey:  cfg.APIKey,
		breaker: breaker,
		now:     time.Now,
	}
}

type kmaResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items struct {
				Item []kmaItem `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type kmaItem struct {
	Category string `json:"category"`
	Value    string `json:"obsrValue"`
}

// Current fetches the nowcast for the KMA grid cell containing (lat, lng).
func (p *KMAProvider) Current(ctx context.Context, lat, lng float64) (KMAObservation, error) {
	nx, ny := toKMAGrid(lat, lng)
	baseDate, baseTime := nowcastBase(p.now())

	query := url.Values{}
	query.Set("serviceKey", p.apiKey)
	query.Set("dataType", "JSON")
	query.Set("numOfRows", "10")
	query.Set("pageNo", "1")
	query.Set("base_date", baseDate)
	query.Set("base_time", baseTime)
	query.Set("nx", strconv.Itoa(nx))
	query.Set("ny", strconv.Itoa(ny))

	fetch := func(ctx context.Context) (interface{}, error) {
		var resp kmaResponse
		if err := p.client.GetJSON(ctx, "/getUltraSrtNcst?"+query.Encode(), nil, &resp); err != nil {
			return KMAObservation{}, fmt.Errorf("nowcast request failed: %w", err)
		}
		if code := resp.Response.Header.ResultCode; code != "00" {
			return KMAObservation{}, fmt.Errorf("nowcast error %s: %s", code, resp.Response.Header.ResultMsg)
		}
		return parseObservation(resp.Response.Body.Items.Item), nil
	}

	var result interface{}
	var err error
	if p.breaker != nil {
		result, err = p.breaker.Execute(ctx, fetch)
	} else {
		result, err = fetch(ctx)
	}
	if err != nil {
		return KMAObservation{}, err
	}
	return result.(KMAObservation), nil
}

func parseObservation(items []kmaItem) KMAObservation {
	var obs KMAObservation
	for _, item := range items {
		value, err := strconv.ParseFloat(item.Value, 64)
		if err != nil {
			// Stations report "강수없음" and similar markers for zero
			continue
		}
		switch item.Category {
		case "PTY":
			obs.PTY = int(value)
		case "T1H":
			obs.T1H = value
		case "RN1":
			obs.RN1 = value
		case "SNO":
			obs.SNO = value
		}
	}
	return obs
}

// nowcastBase returns the base_date and base_time for the most recent
// published nowcast. Observations for hour H become available around H:40,
// so before that the previous hour is used.
func nowcastBase(now time.Time) (string, string) {
	base := now
	if now.Minute() < 40 {
		base = now.Add(-time.Hour)
	}
	return base.Format("20060102"), fmt.Sprintf("%02d00", base.Hour())
}

// Lambert conformal conic projection parameters for the KMA forecast grid.
const (
	kmaGridKm   = 5.0
	kmaStdLat1  = 30.0
	kmaStdLat2  = 60.0
	kmaOriginLng = 126.0
	kmaOriginLat = 38.0
	kmaOriginX  = 43.0
	kmaOriginY  = 136.0
	earthRadiusKm = 6371.00877
)

// toKMAGrid converts WGS84 coordinates to the KMA nowcast grid cell.
func toKMAGrid(lat, lng float64) (int, int) {
	const degToRad = math.Pi / 180.0

	re := earthRadiusKm / kmaGridKm
	slat1 := kmaStdLat1 * degToRad
	slat2 := kmaStdLat2 * degToRad
	olng := kmaOriginLng * degToRad
	olat := kmaOriginLat * degToRad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn
	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + lat*degToRad*0.5)
	ra = re * sf / math.Pow(ra, sn)
	theta := lng*degToRad - olng
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= sn

	x := int(math.Floor(ra*math.Sin(theta) + kmaOriginX + 0.5))
	y := int(math.Floor(ro - ra*math.Cos(theta) + kmaOriginY + 0.5))
	return x, y
}

func logGridMiss(lat, lng float64, err error) {
	logger.Warn("weather lookup failed",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.Error(err),
	)
}
