// Package slope adjusts walking speed for terrain gradient using Tobler's
// hiking function.
package slope

import (
	"fmt"
	"math"
)

const (
	// MaxSlopePercent is the hard clamp applied to slope inputs. Values
	// beyond it are considered data errors rather than real terrain.
	MaxSlopePercent = 70.0

	// ExtremeSlopePercent marks terrain that is technically walkable but
	// worth surfacing to the caller.
	ExtremeSlopePercent = 60.0
)

// toblerSpeedKmh is Tobler's hiking function: predicted walking speed in
// km/h for a gradient expressed as a fraction (rise over run).
func toblerSpeedKmh(gradient float64) float64 {
	return 6.0 * math.Exp(-3.5*math.Abs(gradient+0.05))
}

// flatSpeedKmh is the function's own value at zero gradient, so that
// Factor(0) is exactly 1.
var flatSpeedKmh = toblerSpeedKmh(0)

// Factor returns the speed multiplier for a slope in percent. Flat ground
// yields 1.0, the gentle downhill optimum (-5%) slightly above 1, and steep
// terrain in either direction pushes the factor toward zero.
func Factor(slopePercent float64) float64 {
	result := Evaluate(slopePercent)
	return result.Factor
}

// Result carries the factor together with input diagnostics.
type Result struct {
	Factor       float64
	SlopePercent float64 // the slope actually used, after clamping
	Clamped      bool
	Warnings     []string
}

// Evaluate computes the speed factor and reports clamping and extreme
// terrain warnings.
func Evaluate(slopePercent float64) Result {
	result := Result{SlopePercent: slopePercent}

	if math.Abs(slopePercent) > MaxSlopePercent {
		clamped := math.Copysign(MaxSlopePercent, slopePercent)
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"slope %.1f%% beyond ±%.0f%%, clamped to %.1f%%",
			slopePercent, MaxSlopePercent, clamped))
		result.SlopePercent = clamped
		result.Clamped = true
	}

	if math.Abs(result.SlopePercent) > ExtremeSlopePercent {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"extreme slope %.1f%%, speed estimate unreliable", result.SlopePercent))
	}

	result.Factor = toblerSpeedKmh(result.SlopePercent/100.0) / flatSpeedKmh
	return result
}
