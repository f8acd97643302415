package crosswalk

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/geo"
	"github.com/waypace/walk-eta/pkg/logger"
)

const (
	// matchRadiusDeg is the maximum point-to-crossing distance for a match,
	// in plain degrees, matching the reference data set's granularity.
	matchRadiusDeg = 0.01

	// startupBufferSeconds is walk-signal time lost to reaction and kerb
	// clearance, subtracted from the usable green window.
	startupBufferSeconds = 7.0
)

// crossingKeywords mark route step descriptions that traverse a signalised
// crossing. The route provider describes steps in Korean.
var crossingKeywords = []string{"횡단보도", "crosswalk"}

// IsCrossingStep reports whether a step description traverses a crossing.
func IsCrossingStep(description string) bool {
	lowered := strings.ToLower(description)
	for _, keyword := range crossingKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// crossingLister is the persistence surface the service needs.
type crossingLister interface {
	ListAll(ctx context.Context) ([]Crossing, error)
}

// Service answers crossing wait queries from an in-memory spatial index of
// the reference table.
type Service struct {
	mu    sync.RWMutex
	index map[h3.Cell][]Crossing
	count int
}

// NewService creates an empty crosswalk service. Call Load before use.
func NewService() *Service {
	return &Service{index: make(map[h3.Cell][]Crossing)}
}

// Load builds the spatial index from the reference table.
func (s *Service) Load(ctx context.Context, repo crossingLister) error {
	crossings, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}
	s.SetCrossings(crossings)
	logger.Info("crossing index built", zap.Int("crossings", len(crossings)))
	return nil
}

// SetCrossings replaces the index contents.
func (s *Service) SetCrossings(crossings []Crossing) {
	index := make(map[h3.Cell][]Crossing, len(crossings))
	for _, crossing := range crossings {
		cell := geo.LatLngToCell(crossing.Lat, crossing.Lng, geo.H3ResolutionCrossing)
		index[cell] = append(index[cell], crossing)
	}

	s.mu.Lock()
	s.index = index
	s.count = len(crossings)
	s.mu.Unlock()
}

// Count returns the number of indexed crossings.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// WaitAt estimates the signal wait at the crossing nearest the point, or 0
// when no crossing lies within the match radius.
func (s *Service) WaitAt(lat, lng float64) float64 {
	crossing, ok := s.nearest(lat, lng)
	if !ok {
		return 0
	}
	return expectedWait(crossing)
}

// WaitForPoints sums crossing waits over the entry points of detected
// crossing steps.
func (s *Service) WaitForPoints(points []geo.Coordinate) WaitResult {
	result := WaitResult{}
	for _, point := range points {
		crossing, ok := s.nearest(point.Lat, point.Lng)
		if !ok {
			continue
		}
		wait := expectedWait(crossing)
		result.Count++
		result.TotalWaitSeconds += wait
		result.Details = append(result.Details, WaitDetail{
			Lat:         crossing.Lat,
			Lng:         crossing.Lng,
			WaitSeconds: wait,
		})
	}
	return result
}

func (s *Service) nearest(lat, lng float64) (Crossing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best Crossing
	bestDist := math.Inf(1)
	for _, cell := range geo.NeighborCells(lat, lng, geo.H3ResolutionCrossing, geo.H3KRingCrossing) {
		for _, crossing := range s.index[cell] {
			dist := math.Hypot(lat-crossing.Lat, lng-crossing.Lng)
			if dist < bestDist {
				best = crossing
				bestDist = dist
			}
		}
	}

	if bestDist > matchRadiusDeg {
		return Crossing{}, false
	}
	return best, true
}

// expectedWait estimates the average wait for one crossing from its signal
// cycle, capped at a full cycle so degenerate timing data cannot produce
// absurd delays.
func expectedWait(crossing Crossing) float64 {
	red := crossing.RedSeconds
	green := crossing.GreenSeconds
	if red <= 0 && green <= 0 {
		return 0
	}

	wait := math.Pow(green-startupBufferSeconds+red, 2) / 2
	if cycle := red + green; wait > cycle {
		wait = cycle
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}
