package scoring

import (
	"math"

	"github.com/ngmaloney/reefcast/internal/models"
)

// WindClass describes the wind relative to the shore
type WindClass string

const (
	WindOffshore   WindClass = "offshore"
	WindOnshore    WindClass = "onshore"
	WindCrossShore WindClass = "cross-shore"
	WindUnknown    WindClass = "unknown"
	WindVariable   WindClass = "variable"
)

const (
	windCalmMph   = 5.0
	windStrongMph = 25.0
	windFloor     = 10.0 // speed score at and above windStrongMph

	offshoreBoost     = 30.0
	onshoreBase       = 40.0
	onshorePerMph     = 2.0
	crossShoreFactor  = 0.9
	directionalCutoff = 0.5
)

// OffshoreFactor is +1 for wind blowing straight off the land (from the
// heading opposite the one the site faces) and -1 for wind blowing straight
// in, linear in the angle between them
func OffshoreFactor(windFromDeg, facingDeg float64) float64 {
	diff := math.Mod(math.Abs(windFromDeg-facingDeg), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return clamp(diff/90-1, -1, 1)
}

// ScoreWind scores wind speed, then adjusts for direction when both the wind
// direction and the site's facing direction are known
func ScoreWind(speedMph, fromDeg *float64, exposure string) (float64, WindClass) {
	if speedMph == nil {
		return neutralScore, WindUnknown
	}
	speed := *speedMph

	var score float64
	switch {
	case speed <= windCalmMph:
		score = 100
	case speed >= windStrongMph:
		score = windFloor
	default:
		score = 100 - (speed-windCalmMph)*(100-windFloor)/(windStrongMph-windCalmMph)
	}

	facing, ok := models.CompassDegrees(exposure)
	if fromDeg == nil || !ok {
		return clamp(score, 0, 100), WindVariable
	}

	factor := OffshoreFactor(*fromDeg, facing)
	switch {
	case factor > directionalCutoff:
		return clamp(score+factor*offshoreBoost, 0, 100), WindOffshore
	case factor < -directionalCutoff:
		penalty := math.Abs(factor) * (onshoreBase + onshorePerMph*speed)
		return clamp(score-penalty, 0, 100), WindOnshore
	default:
		return clamp(score*crossShoreFactor, 0, 100), WindCrossShore
	}
}
