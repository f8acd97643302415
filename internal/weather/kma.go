package weather

// KMA ultra-short-term forecast precipitation type codes.
const (
	ptyClear         = 0
	ptyRain          = 1
	ptySleet         = 2
	ptySnow          = 3
	ptyShower        = 4
	ptyRaindrop      = 5
	ptyRaindropFlake = 6
	ptySnowFlurry    = 7
)

// snowFromRainRatio converts a liquid-equivalent rain rate into an
// approximate snow accumulation rate when the station reports none.
const snowFromRainRatio = 10.0

// KMAObservation is the subset of a KMA ultra-short-term nowcast that the
// model consumes.
type KMAObservation struct {
	PTY  int     `json:"pty"`
	T1H  float64 `json:"t1h"`
	RN1  float64 `json:"rn1"`
	SNO  float64 `json:"sno"`
}

// MapKMA translates a KMA observation into a model input.
func MapKMA(obs KMAObservation) Input {
	input := Input{TempC: obs.T1H}

	switch obs.PTY {
	case ptyRain, ptyShower, ptyRaindrop:
		input.Condition = ConditionRain
	case ptySnow, ptySnowFlurry:
		input.Condition = ConditionSnow
	case ptySleet, ptyRaindropFlake:
		input.Condition = ConditionSleet
	default:
		input.Condition = ConditionClear
	}

	if obs.RN1 > 0 {
		input.RainMmH = obs.RN1
	}

	switch {
	case obs.SNO > 0:
		input.SnowCmH = obs.SNO
	case (input.Condition == ConditionSnow || input.Condition == ConditionSleet) && input.RainMmH > 0:
		// Stations often report snowfall as liquid equivalent only
		input.SnowCmH = input.RainMmH / snowFromRainRatio
	}

	return input
}
