// Package render formats digests and rankings for terminals, files and SMS
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ngmaloney/reefcast/internal/digest"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ranking"
	"github.com/ngmaloney/reefcast/internal/usgs"
)

const rule = "=================================================="

// Renderer turns reports into text
type Renderer struct {
	styles Styles
	styled bool
}

// New creates a renderer, coloured when styled is true
func New(styled bool) *Renderer {
	if styled {
		return &Renderer{styles: ColorStyles(), styled: true}
	}
	return &Renderer{styles: PlainStyles()}
}

// ForWriter creates a renderer that colours output only when w is a terminal
func ForWriter(w io.Writer) *Renderer {
	f, ok := w.(*os.File)
	return New(ok && isatty.IsTerminal(f.Fd()))
}

// Styles returns the renderer's palette
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Text renders the full report
func (r *Renderer) Text(d *digest.Report) string {
	s := r.styles
	var lines []string

	lines = append(lines,
		rule,
		s.Title.Render("OAHU DIVE CONDITIONS"),
		d.GeneratedAt.Format("Monday, January 2, 2006 at 3:04 PM"),
		rule,
		"",
	)

	if len(d.Alerts) > 0 {
		lines = append(lines, s.Danger.Render("*** ACTIVE ALERTS ***"))
		for _, a := range d.Alerts {
			lines = append(lines, "  - "+a.Headline)
		}
		lines = append(lines, "")
	}

	lines = append(lines, s.Section.Render("SUMMARY"), "------------------------------")
	if d.DiveableSites == 0 {
		lines = append(lines,
			s.Danger.Render("No diveable sites today"),
			fmt.Sprintf("Wave heights: %.1f - %.1f ft", d.WaveRange.Min, d.WaveRange.Max),
		)
	} else {
		lines = append(lines, s.Success.Render(fmt.Sprintf("Diveable sites: %d of %d", d.DiveableSites, d.TotalSites)))
		if d.BestCoast != "" {
			lines = append(lines, "Best conditions: "+d.BestCoast)
		}
	}
	lines = append(lines, fmt.Sprintf("Wind: %.0f - %.0f mph", d.WindRange.Min, d.WindRange.Max))
	switch {
	case d.IsFlatDay():
		lines = append(lines, s.Muted.Render("Flat day island-wide"))
	case d.IsBigDay():
		lines = append(lines, s.Warning.Render("Big surf day, stay on protected shores"))
	}
	lines = append(lines, "")

	if len(d.TopSites) > 0 {
		lines = append(lines, s.Section.Render("TOP SITES"), "------------------------------")
		for i, site := range d.TopSites {
			lines = append(lines, r.siteLines(i+1, site)...)
		}
		lines = append(lines, "")
	}

	if len(d.CoastSummaries) > 0 {
		lines = append(lines, s.Section.Render("BY COAST"), "------------------------------")
		for _, c := range d.CoastSummaries {
			wave := "N/A"
			if c.AverageWaveHeightFt != nil {
				wave = fmt.Sprintf("%.1fft avg", *c.AverageWaveHeightFt)
			}
			lines = append(lines, fmt.Sprintf("%s: %d/%d diveable (%s)", c.DisplayName, c.DiveableCount, c.TotalCount, wave))
		}
		lines = append(lines, "")
	}

	if d.TideInfo != nil {
		lines = append(lines, s.Section.Render("TIDES"), "------------------------------")
		if d.TideInfo.NextHigh != nil {
			lines = append(lines, "Next High: "+formatTide(*d.TideInfo.NextHigh))
		}
		if d.TideInfo.NextLow != nil {
			lines = append(lines, "Next Low: "+formatTide(*d.TideInfo.NextLow))
		}
		lines = append(lines, "")
	}

	if len(d.Outlook) > 0 {
		lines = append(lines, s.Section.Render("OUTLOOK"), "------------------------------")
		for _, o := range d.Outlook {
			header := fmt.Sprintf("%s (%s)", o.DisplayName, o.Zone)
			if best, ok := o.BestDay(); ok {
				header += " best: " + best.Period
			}
			lines = append(lines, s.Label.Render(header))
			for _, day := range o.Days {
				lines = append(lines, fmt.Sprintf("  %-16s %s %5.1f  seas %.0fft  wind %s %.0f mph",
					day.Period, s.Grade(day.Grade), day.Score, day.WaveHeightFt, orDash(day.WindDirection), day.WindMph))
			}
		}
		lines = append(lines, "")
	}

	if len(d.APIStatuses) > 0 {
		lines = append(lines, s.Section.Render("DATA SOURCES"), "------------------------------")
		for _, st := range d.APIStatuses {
			if st.TotalCalls() == 0 {
				lines = append(lines, s.Muted.Render(fmt.Sprintf("%s: not used", st.DisplayName)))
				continue
			}
			line := fmt.Sprintf("%s: %d/%d ok (%.0f%%)", st.DisplayName, st.SuccessCount, st.TotalCalls(), st.SuccessRate())
			if st.FailureCount > 0 {
				line = s.Warning.Render(line)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	if len(d.Errors) > 0 {
		lines = append(lines, s.Danger.Render("ERRORS"))
		for _, e := range d.Errors {
			lines = append(lines, "  - "+e)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		rule,
		"Data: NDBC, PacIOOS, NWS, NOAA CO-OPS, USGS, Hawaii DOH",
		rule,
	)
	return strings.Join(lines, "\n")
}

// Sites renders a titled ranking, as printed for coast and best-site queries
func (r *Renderer) Sites(title string, ranked []ranking.RankedLocation) string {
	s := r.styles
	lines := []string{s.Section.Render(title), "------------------------------"}
	if len(ranked) == 0 {
		lines = append(lines, s.Muted.Render("No sites match"))
		return strings.Join(lines, "\n")
	}
	for i, site := range ranked {
		rank := site.Rank
		if rank == 0 {
			rank = i + 1
		}
		lines = append(lines, r.siteLines(rank, site)...)
	}
	return strings.Join(lines, "\n")
}

// Detail renders everything known about one scored site
func (r *Renderer) Detail(site ranking.RankedLocation) string {
	s := r.styles
	res := site.Result
	var lines []string

	lines = append(lines,
		s.Section.Render(site.Location.Name),
		fmt.Sprintf("%s  %s  %.1f  %s", site.Location.Coast.DisplayName(), s.Grade(res.Grade), res.TotalScore, status(site)),
		res.Summary,
		"",
		s.Label.Render("Components"),
		fmt.Sprintf("  Wave power  %5.1f", res.WavePowerScore),
		fmt.Sprintf("  Wind        %5.1f  (%s)", res.WindScore, res.WindClass),
		fmt.Sprintf("  Visibility  %5.1f", res.VisibilityScore),
		fmt.Sprintf("  Tide        %5.1f", res.TideScore),
		fmt.Sprintf("  Time        %5.1f", res.TimeScore),
	)

	if snap := site.Snapshot; snap != nil {
		lines = append(lines, "", s.Label.Render("Conditions"))
		lines = append(lines, "  Waves: "+formatWaves(snap))
		lines = append(lines, "  Wind: "+formatWind(snap))
		if snap.TidePhase != "" {
			lines = append(lines, "  Tide: "+string(snap.TidePhase))
		}
		if snap.StreamDischargeCfs != nil {
			lines = append(lines, fmt.Sprintf("  Runoff: %.1f cfs (%s)", *snap.StreamDischargeCfs, usgs.Level(*snap.StreamDischargeCfs)))
		}
		if snap.Advisory {
			lines = append(lines, s.Danger.Render("  Water quality advisory: "+snap.AdvisoryReason))
		}
		for _, e := range snap.Errors {
			lines = append(lines, s.Muted.Render("  "+e))
		}
	}

	if len(res.Warnings) > 0 {
		lines = append(lines, "", s.Label.Render("Warnings"))
		for _, w := range res.Warnings {
			lines = append(lines, s.Warning.Render("  ! "+w))
		}
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) siteLines(rank int, site ranking.RankedLocation) []string {
	s := r.styles
	wave := "N/A"
	if site.Snapshot != nil && site.Snapshot.WaveHeightFt != nil {
		wave = fmt.Sprintf("%.1fft", *site.Snapshot.WaveHeightFt)
	}

	lines := []string{
		fmt.Sprintf("%d. %s", rank, site.Location.Name),
		fmt.Sprintf("   Grade: %s | %s | Waves: %s", s.Grade(site.Result.Grade), status(site), wave),
	}
	if len(site.Result.Warnings) > 0 {
		lines = append(lines, s.Warning.Render("   Warning: "+site.Result.Warnings[0]))
	}
	return lines
}

func status(site ranking.RankedLocation) string {
	if site.Diveable() {
		return "DIVEABLE"
	}
	return "UNSAFE"
}

func formatWaves(snap *models.EnvironmentalSnapshot) string {
	if snap.WaveHeightFt == nil {
		return "N/A"
	}
	out := fmt.Sprintf("%.1fft", *snap.WaveHeightFt)
	if snap.WavePeriodS != nil {
		out += fmt.Sprintf(" @ %.0fs", *snap.WavePeriodS)
	}
	if snap.SwellDirectionDeg != nil {
		out += " from " + models.CompassPoint(*snap.SwellDirectionDeg)
	}
	if snap.WaveSource != models.WaveSourceNone {
		out += fmt.Sprintf(" (%s)", snap.WaveSource)
	}
	return out
}

func formatWind(snap *models.EnvironmentalSnapshot) string {
	if snap.WindSpeedMph == nil {
		return "N/A"
	}
	out := fmt.Sprintf("%.0f mph", *snap.WindSpeedMph)
	if snap.WindDirectionDeg != nil {
		out += " " + models.CompassPoint(*snap.WindDirectionDeg)
	} else {
		out += " variable"
	}
	return out
}

func formatTide(e models.TideEvent) string {
	return fmt.Sprintf("%s (%.1fft)", e.Time.In(models.HawaiiTime).Format("Mon 3:04 PM"), e.Height)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
