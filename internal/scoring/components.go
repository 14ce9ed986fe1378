package scoring

import (
	"strings"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

const (
	wpiExcellent = 5.0  // score 100 at or below
	wpiPoor      = 50.0 // score 0 at or above

	rainfallNone  = 0.1 // inches in 48h, score 100
	rainfallHeavy = 2.0 // score 0

	dischargeLow  = 5.0  // cfs, score 100
	dischargeHigh = 50.0 // score 0

	neutralScore       = 50.0
	advisoryVisibility = 10.0
	defaultVisibility  = 70.0
	unknownTidePhase   = 70.0
)

// WavePowerIndex returns height² × period, or nil when either reading is
// missing, the height is negative or the period is not positive
func WavePowerIndex(heightFt, periodS *float64) *float64 {
	if heightFt == nil || periodS == nil {
		return nil
	}
	if *heightFt < 0 || *periodS <= 0 {
		return nil
	}
	wpi := *heightFt * *heightFt * *periodS
	return &wpi
}

// ScoreWavePower maps the WPI onto [0,100], 50 when unknown
func ScoreWavePower(wpi *float64) float64 {
	if wpi == nil {
		return neutralScore
	}
	return linearDown(*wpi, wpiExcellent, wpiPoor)
}

// ScoreVisibility estimates underwater visibility from runoff indicators.
// The worst available signal wins.
func ScoreVisibility(rainfall48hIn, dischargeCfs *float64, advisory bool) float64 {
	if advisory {
		return advisoryVisibility
	}

	var scores []float64
	if rainfall48hIn != nil {
		scores = append(scores, linearDown(*rainfall48hIn, rainfallNone, rainfallHeavy))
	}
	if dischargeCfs != nil {
		scores = append(scores, linearDown(*dischargeCfs, dischargeLow, dischargeHigh))
	}
	if len(scores) == 0 {
		return defaultVisibility
	}

	worst := scores[0]
	for _, s := range scores[1:] {
		if s < worst {
			worst = s
		}
	}
	return worst
}

// ScoreTide compares the tide phase against the site's preferred tide
func ScoreTide(phase models.TidePhase, optimal string) float64 {
	optimal = strings.ToLower(strings.TrimSpace(optimal))
	if optimal == "" || optimal == "any" {
		return 100
	}
	if phase == "" {
		return unknownTidePhase
	}

	current := models.TidePhase(strings.ToLower(string(phase)))
	if string(current) == optimal {
		return 100
	}

	switch optimal {
	case "high":
		switch current {
		case models.TideRising:
			return 80
		case models.TideFalling:
			return 60
		case models.TidePhaseLow:
			return 30
		}
	case "low":
		switch current {
		case models.TideFalling:
			return 80
		case models.TideRising:
			return 60
		case models.TidePhaseHigh:
			return 30
		}
	}
	return 70
}

// ScoreTimeOfDay favours dawn and early morning, using the local hour of t
func ScoreTimeOfDay(t time.Time) float64 {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 7:
		return 100
	case hour >= 7 && hour < 9:
		return 95
	case hour >= 9 && hour < 11:
		return 80
	case hour >= 11 && hour < 14:
		return 60
	case hour >= 14 && hour < 17:
		return 50
	case hour >= 17 && hour < 19:
		return 70
	default:
		return 40
	}
}

// linearDown is 100 at or below good, 0 at or above bad, linear in between
func linearDown(v, good, bad float64) float64 {
	switch {
	case v <= good:
		return 100
	case v >= bad:
		return 0
	default:
		return 100 * (bad - v) / (bad - good)
	}
}
