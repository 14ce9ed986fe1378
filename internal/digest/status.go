package digest

import (
	"strings"

	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ranking"
)

// APIStatus counts how often an upstream source answered during a run
type APIStatus struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
	LastError    string `json:"last_error,omitempty"`
}

// TotalCalls is the number of recorded outcomes
func (s APIStatus) TotalCalls() int {
	return s.SuccessCount + s.FailureCount
}

// SuccessRate is the share of successful calls as a percentage, 0 when
// nothing was recorded
func (s APIStatus) SuccessRate() float64 {
	if s.TotalCalls() == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCalls()) * 100
}

// Source order also decides which source an error string is charged to
var apiSources = []struct {
	name, display, match string
}{
	{"buoy", "NDBC Buoys", "buoy"},
	{"pacioos", "PacIOOS Wave Model", "pacioos"},
	{"nws", "NWS Weather", "nws"},
	{"tides", "NOAA Tides", "tide"},
	{"usgs", "USGS Streams", "usgs"},
	{"cwb", "Water Quality", "cwb"},
}

// collectAPIStatuses infers per-source outcomes from the snapshots: the wave
// source that answered, the error strings recorded and which fields have data
func collectAPIStatuses(ranked []ranking.RankedLocation) []APIStatus {
	statuses := make([]APIStatus, len(apiSources))
	index := make(map[string]*APIStatus, len(apiSources))
	for i, src := range apiSources {
		statuses[i] = APIStatus{Name: src.name, DisplayName: src.display}
		index[src.name] = &statuses[i]
	}

	for _, r := range ranked {
		snap := r.Snapshot
		if snap == nil {
			continue
		}

		switch snap.WaveSource {
		case models.WaveSourceBuoy:
			index["buoy"].SuccessCount++
		case models.WaveSourcePacIOOS:
			index["pacioos"].SuccessCount++
		default:
			index["buoy"].FailureCount++
			index["pacioos"].FailureCount++
		}

		for _, msg := range snap.Errors {
			lower := strings.ToLower(msg)
			for _, src := range apiSources {
				if strings.Contains(lower, src.match) {
					index[src.name].FailureCount++
					index[src.name].LastError = msg
					break
				}
			}
		}

		if snap.WindSpeedMph != nil {
			index["nws"].SuccessCount++
		}
		if snap.TidePhase != "" {
			index["tides"].SuccessCount++
		}
		if snap.StreamDischargeCfs != nil {
			index["usgs"].SuccessCount++
		}
	}

	return statuses
}
