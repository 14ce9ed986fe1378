package models

import (
	"math"
	"strings"
)

var compassPoints = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

// CompassDegrees converts a 16-point compass direction to degrees.
// ok is false for anything else, including "Variable".
func CompassDegrees(direction string) (deg float64, ok bool) {
	deg, ok = compassPoints[strings.ToUpper(strings.TrimSpace(direction))]
	return deg, ok
}

var compassNames = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint converts degrees to the nearest 16-point compass direction
func CompassPoint(deg float64) string {
	idx := int(math.Round(math.Mod(deg, 360)/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassNames[idx]
}
