// Package weather predicts how current conditions change walking speed.
//
// The model splits the effect into a stride channel (step length) and a
// cadence channel (step rate). Each channel responds to temperature and to
// precipitation intensity; their product, clamped to a sane band, is the
// speed coefficient.
package weather

import (
	"fmt"
	"math"
	"sync"

	"github.com/waypace/walk-eta/internal/speedprofile"
)

// Condition is the precipitation category of an observation.
type Condition string

const (
	ConditionClear Condition = "clear"
	ConditionRain  Condition = "rain"
	ConditionSnow  Condition = "snow"
	ConditionSleet Condition = "sleet"
)

// Input is a mapped weather observation.
type Input struct {
	Condition Condition `json:"condition"`
	TempC     float64   `json:"temp_c"`
	RainMmH   float64   `json:"rain_mm_h"`
	SnowCmH   float64   `json:"snow_cm_h"`
}

// Model parameters. Stride and cadence react differently: stride degrades
// more under rain and snow, cadence is more sensitive to cold.
const (
	hotPenaltyStride  = 0.04
	coldPenaltyStride = 0.03
	mildBonusStride   = 0.01
	hotPenaltyCadence = 0.04
	coldPenaltyCadence = 0.03
	mildBonusCadence  = 0.02

	rainSaturationMmH = 6.0
	rainMaxStride     = 0.06
	rainMaxCadence    = 0.04
	freezingWetFactor = 0.93

	snowSaturationCmH = 1.2
	snowMaxStride     = 0.18
	snowWetBonusStride = 0.10
	snowMaxCadence    = 0.08
	snowWetBonusCadence = 0.05

	sleetFactor = 0.99

	// CoefficientMin and CoefficientMax bound the final coefficient.
	CoefficientMin = 0.70
	CoefficientMax = 1.10

	smoothingAlpha = 0.3

	heavyRainMmH = 10.0
	heavySnowCmH = 2.5
)

// Model computes speed coefficients. A Model instance is scoped to one
// guidance session so that smoothing state never leaks between users.
type Model struct {
	mu           sync.Mutex
	useSmoothing bool
	prev         *float64
}

// NewModel creates a model. With smoothing enabled, successive coefficients
// are blended with an EMA so mid-walk weather flips do not jolt the ETA.
func NewModel(useSmoothing bool) *Model {
	return &Model{useSmoothing: useSmoothing}
}

// Prediction is the model output for one observation. The stride and cadence
// factors are the per-channel multipliers before clamping; Coefficient is
// their clamped, optionally smoothed product.
type Prediction struct {
	StrideFactor  float64  `json:"stride_factor"`
	CadenceFactor float64  `json:"cadence_factor"`
	Coefficient   float64  `json:"coefficient"`
	SpeedMps      float64  `json:"speed_mps"`
	SpeedKmh      float64  `json:"speed_kmh"`
	PercentChange float64  `json:"percent_change"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Predict returns the coefficient for the observation, with smoothing applied
// when enabled, plus the walking speed it implies for the given reference
// speed.
func (m *Model) Predict(referenceSpeedMps float64, input Input) Prediction {
	stride, cadence := rawFactors(input)
	raw := clamp(stride*cadence, CoefficientMin, CoefficientMax)

	m.mu.Lock()
	final := raw
	if m.useSmoothing && m.prev != nil {
		final = (1-smoothingAlpha)*(*m.prev) + smoothingAlpha*raw
	}
	stored := final
	m.prev = &stored
	m.mu.Unlock()

	speedMps := referenceSpeedMps * final
	return Prediction{
		StrideFactor:  stride,
		CadenceFactor: cadence,
		Coefficient:   final,
		SpeedMps:      speedMps,
		SpeedKmh:      speedMps * 3.6,
		PercentChange: (final - 1.0) * 100,
		Warnings:      safetyWarnings(input),
	}
}

// Coefficient predicts at the population reference walking speed.
func (m *Model) Coefficient(input Input) Prediction {
	return m.Predict(speedprofile.ReferenceSpeedMps, input)
}

// ResetSmoothing clears the EMA state, e.g. when a new walk starts.
func (m *Model) ResetSmoothing() {
	m.mu.Lock()
	m.prev = nil
	m.mu.Unlock()
}

// TimeFactor converts a speed coefficient into a travel time multiplier.
func TimeFactor(coefficient float64) float64 {
	if coefficient <= 0 {
		return 1.0
	}
	return 1.0 / coefficient
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func gaussian(x, mu, sigma float64) float64 {
	d := x - mu
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

// rawFactors returns the unclamped stride and cadence multipliers.
func rawFactors(input Input) (float64, float64) {
	t := input.TempC

	stride := 1.0 -
		hotPenaltyStride*sigmoid((t-30)/6) -
		coldPenaltyStride*sigmoid((0-t)/4) +
		mildBonusStride*gaussian(t, 10, 5)

	cadence := 1.0 -
		hotPenaltyCadence*sigmoid((t-30)/4) -
		coldPenaltyCadence*sigmoid((0-t)/3) +
		mildBonusCadence*gaussian(t, 10, 5)

	strideWet, cadenceWet := precipitationFactors(input)
	return stride * strideWet, cadence * cadenceWet
}

// precipitationFactors returns the stride and cadence multipliers for the
// observation's precipitation.
func precipitationFactors(input Input) (float64, float64) {
	switch input.Condition {
	case ConditionRain:
		return rainFactors(input.TempC, input.RainMmH)
	case ConditionSnow:
		return snowFactors(input.TempC, input.SnowCmH)
	case ConditionSleet:
		// Sleet behaves like the worse of rain and snow per channel,
		// slightly degraded for slush
		rainS, rainC := rainFactors(input.TempC, input.RainMmH)
		snowS, snowC := snowFactors(input.TempC, input.SnowCmH)
		return math.Min(rainS, snowS) * sleetFactor, math.Min(rainC, snowC) * sleetFactor
	default:
		return 1.0, 1.0
	}
}

func rainFactors(tempC, intensityMmH float64) (float64, float64) {
	if intensityMmH <= 0 {
		return 1.0, 1.0
	}

	// Rain hurts more in heat (sweat, slick shoes) and cold (chill)
	severity := 1.0 + 0.20*sigmoid((tempC-30)/4) + 0.30*sigmoid((0-tempC)/3)
	saturation := 1.0 - math.Exp(-intensityMmH/rainSaturationMmH)

	stride := 1.0 - rainMaxStride*severity*saturation
	cadence := 1.0 - rainMaxCadence*severity*saturation

	if tempC <= 0 {
		// Freezing rain: split the surface-ice penalty across channels
		ice := math.Sqrt(freezingWetFactor)
		stride *= ice
		cadence *= ice
	}

	return stride, cadence
}

func snowFactors(tempC, intensityCmH float64) (float64, float64) {
	if intensityCmH <= 0 {
		return 1.0, 1.0
	}

	// Wet snow near 1.5 °C is the most slippery
	wet := gaussian(tempC, 1.5, 1.5)
	saturation := 1.0 - math.Exp(-intensityCmH/snowSaturationCmH)

	stride := 1.0 - (snowMaxStride+snowWetBonusStride*wet)*saturation
	cadence := 1.0 - (snowMaxCadence+snowWetBonusCadence*wet)*saturation

	return stride, cadence
}

func safetyWarnings(input Input) []string {
	var warnings []string

	if input.TempC <= 0 && input.RainMmH > 0 {
		warnings = append(warnings, "freezing rain: surfaces may be icy")
	}
	if input.TempC >= 0 && input.TempC <= 3 && input.SnowCmH > 0 {
		warnings = append(warnings, "wet snow: expect slippery slush")
	}
	if input.SnowCmH > heavySnowCmH {
		warnings = append(warnings, fmt.Sprintf("heavy snowfall (%.1f cm/h)", input.SnowCmH))
	}
	if input.RainMmH > heavyRainMmH {
		warnings = append(warnings, fmt.Sprintf("heavy rain (%.1f mm/h)", input.RainMmH))
	}

	return warnings
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
