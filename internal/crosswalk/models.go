// Package crosswalk estimates signal wait time at pedestrian crossings along
// a walking route, from a reference table of crossing locations and signal
// cycle timings.
package crosswalk

// Crossing is one signalised pedestrian crossing.
type Crossing struct {
	ID           int64   `json:"id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RedSeconds   float64 `json:"red_seconds"`
	GreenSeconds float64 `json:"green_seconds"`
}

// WaitDetail reports the estimated wait at one matched crossing.
type WaitDetail struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	WaitSeconds float64 `json:"wait_seconds"`
}

// WaitResult aggregates crossing waits over a route.
type WaitResult struct {
	Count            int          `json:"count"`
	TotalWaitSeconds float64      `json:"total_wait_seconds"`
	Details          []WaitDetail `json:"details,omitempty"`
}
