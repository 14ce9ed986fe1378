package scoring

import (
	"fmt"
	"strings"
)

func buildWarnings(in Input, wpi *float64, class WindClass, visibility float64) []string {
	warnings := []string{}

	if in.HighSurfWarning {
		warnings = append(warnings, "High Surf Warning in effect for some areas - check your coast")
	}
	if in.HighSurfAdvisory {
		warnings = append(warnings, "High Surf Advisory in effect - use caution")
	}
	if wpi != nil && *wpi > 20 {
		warnings = append(warnings, fmt.Sprintf("Elevated wave power index (%.1f) - challenging conditions", *wpi))
	}
	if in.WindSpeedMph != nil {
		speed := *in.WindSpeedMph
		if class == WindOnshore && speed > 10 {
			warnings = append(warnings, fmt.Sprintf("Onshore wind (%.0f mph) - expect choppy conditions", speed))
		} else if speed > 20 {
			warnings = append(warnings, fmt.Sprintf("Strong winds (%.0f mph)", speed))
		}
	}
	if visibility < 50 {
		warnings = append(warnings, "Reduced visibility likely due to recent rainfall or runoff")
	}

	return warnings
}

var gradeLeads = map[Grade]string{
	GradeA: "Excellent conditions",
	GradeB: "Good conditions",
	GradeC: "Fair conditions - some challenges",
	GradeD: "Poor conditions - experienced divers only",
	GradeF: "Unsafe - diving not recommended",
}

func buildSummary(grade Grade, wpi *float64, in Input, class WindClass) string {
	parts := []string{gradeLeads[grade]}

	if in.WaveHeightFt != nil {
		parts = append(parts, fmt.Sprintf("Waves: %.1fft", *in.WaveHeightFt))
	}

	if in.WindSpeedMph != nil {
		wind := fmt.Sprintf("Wind: %.0fmph", *in.WindSpeedMph)
		switch class {
		case WindOffshore:
			wind += " ✓"
		case WindOnshore:
			wind += " ✗"
		}
		parts = append(parts, wind)
	}

	if wpi != nil {
		switch {
		case *wpi < 10:
			parts = append(parts, "Very calm seas")
		case *wpi < 25:
			parts = append(parts, "Moderate wave energy")
		default:
			parts = append(parts, "High wave energy")
		}
	}

	return strings.Join(parts, " | ")
}
