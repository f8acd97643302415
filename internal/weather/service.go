package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/logger"
	"github.com/waypace/walk-eta/pkg/redis"
)

// Service resolves weather model inputs for a location, with a short-lived
// cache so a burst of route analyses does not hammer the nowcast API.
type Service struct {
	provider Provider
	cache    redis.ClientInterface
	cacheTTL time.Duration
}

// NewService creates the weather service. cache may be nil, in which case
// every call hits the provider.
func NewService(provider Provider, cache redis.ClientInterface, cacheTTL time.Duration) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// CurrentInput returns the mapped observation for the location. Nowcast
// observations cover a 5 km grid cell, so the cache key is the cell.
func (s *Service) CurrentInput(ctx context.Context, lat, lng float64) (Input, error) {
	nx, ny := toKMAGrid(lat, lng)
	cacheKey := fmt.Sprintf("weather:ncst:%d:%d", nx, ny)

	if s.cache != nil {
		if cached, err := s.cache.GetString(ctx, cacheKey); err == nil {
			var input Input
			if err := json.Unmarshal([]byte(cached), &input); err == nil {
				return input, nil
			}
			logger.WarnContext(ctx, "discarding malformed weather cache entry", zap.String("key", cacheKey))
		} else if !redis.IsNil(err) {
			logger.WarnContext(ctx, "weather cache read failed", zap.Error(err))
		}
	}

	obs, err := s.provider.Current(ctx, lat, lng)
	if err != nil {
		logGridMiss(lat, lng, err)
		return Input{}, err
	}
	input := MapKMA(obs)

	if s.cache != nil {
		payload, err := json.Marshal(input)
		if err == nil {
			if err := s.cache.SetWithExpiration(ctx, cacheKey, payload, s.cacheTTL); err != nil {
				logger.WarnContext(ctx, "weather cache write failed", zap.Error(err))
			}
		}
	}

	return input, nil
}
