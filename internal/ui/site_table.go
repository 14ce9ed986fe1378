package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"

	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ranking"
)

// siteColumns lays out the ranked-site table
func siteColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Site", Width: 28},
		{Title: "Coast", Width: 12},
		{Title: "Score", Width: 6},
		{Title: "Grade", Width: 5},
		{Title: "Waves", Width: 10},
		{Title: "Wind", Width: 10},
		{Title: "Tide", Width: 8},
		{Title: "Status", Width: 8},
	}
}

// siteRows converts ranked sites into table rows, keeping their order
func siteRows(sites []ranking.RankedLocation) []table.Row {
	rows := make([]table.Row, len(sites))
	for i, s := range sites {
		rows[i] = table.Row{
			fmt.Sprintf("%d", s.Rank),
			s.Location.Name,
			s.Location.Coast.DisplayName(),
			fmt.Sprintf("%.1f", s.Result.TotalScore),
			string(s.Result.Grade),
			waves(s.Snapshot),
			wind(s.Snapshot),
			tide(s.Snapshot),
			diveStatus(s),
		}
	}
	return rows
}

// newSiteTable creates a focused table.Model for the ranked sites
func newSiteTable(sites []ranking.RankedLocation, height int) table.Model {
	t := table.New(
		table.WithColumns(siteColumns()),
		table.WithRows(siteRows(sites)),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	t.SetStyles(tableStyles())
	return t
}

func waves(snap *models.EnvironmentalSnapshot) string {
	if snap == nil || snap.WaveHeightFt == nil {
		return "-"
	}
	if snap.WavePeriodS == nil {
		return fmt.Sprintf("%.1fft", *snap.WaveHeightFt)
	}
	return fmt.Sprintf("%.1fft@%.0fs", *snap.WaveHeightFt, *snap.WavePeriodS)
}

func wind(snap *models.EnvironmentalSnapshot) string {
	if snap == nil || snap.WindSpeedMph == nil {
		return "-"
	}
	if snap.WindDirectionDeg == nil {
		return fmt.Sprintf("%.0fmph", *snap.WindSpeedMph)
	}
	return fmt.Sprintf("%.0fmph %s", *snap.WindSpeedMph, models.CompassPoint(*snap.WindDirectionDeg))
}

func tide(snap *models.EnvironmentalSnapshot) string {
	if snap == nil || snap.TidePhase == "" {
		return "-"
	}
	return string(snap.TidePhase)
}

func diveStatus(s ranking.RankedLocation) string {
	switch {
	case !s.Result.GatesPassed:
		return "UNSAFE"
	case s.Diveable():
		return "GO"
	default:
		return "MARGINAL"
	}
}
