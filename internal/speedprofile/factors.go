package speedprofile

// ReferenceSpeedMps is the population walking speed route providers assume
// when they estimate walking time (4.0 km/h).
const ReferenceSpeedMps = 1.111

const (
	minUserFactor = 0.5
	maxUserFactor = 2.0
)

// UserSpeedFactor converts an observed walking speed into a time multiplier
// against the reference speed. Faster walkers get a factor below 1; no
// observation is neutral.
func UserSpeedFactor(observedSpeedMps *float64) float64 {
	if observedSpeedMps == nil || *observedSpeedMps <= 0 {
		return 1.0
	}

	factor := ReferenceSpeedMps / *observedSpeedMps
	if factor < minUserFactor {
		return minUserFactor
	}
	if factor > maxUserFactor {
		return maxUserFactor
	}
	return factor
}

// ProfileTimeFactor derives the user factor from a stored profile instead of
// a direct observation. A nil profile is neutral.
func ProfileTimeFactor(profile *Profile) float64 {
	if profile == nil || profile.NormalSpeedKmh <= 0 {
		return 1.0
	}
	mps := profile.NormalSpeedKmh / 3.6
	return UserSpeedFactor(&mps)
}

// ReverseBaseSpeed recovers the flat-ground fair-weather speed from a speed
// observed under known conditions. slopeFactor and weatherFactor are time
// multipliers: walking time scaled up by them, so the observed speed scaled
// down, and multiplying them back out undoes the conditions.
func ReverseBaseSpeed(observedKmh, slopeFactor, weatherFactor float64) float64 {
	if observedKmh <= 0 {
		return 0
	}
	if slopeFactor <= 0 {
		slopeFactor = 1.0
	}
	if weatherFactor <= 0 {
		weatherFactor = 1.0
	}
	return observedKmh * slopeFactor * weatherFactor
}
