package render

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/reefcast/internal/digest"
	"github.com/ngmaloney/reefcast/internal/models"
)

const (
	// SMSMaxLength is the longest message sent, a concatenated SMS
	SMSMaxLength = 1600
	smsTopSites  = 3
	smsNameLen   = 20
)

var nameShortener = strings.NewReplacer(" Beach", "", " Bay", "", " Point", " Pt")

// SMS renders a compact plain-text digest of at most SMSMaxLength
// characters. allCoasts adds the diveable count of the leading coasts.
func SMS(d *digest.Report, allCoasts bool) string {
	var lines []string

	lines = append(lines, "DIVE CONDITIONS "+d.GeneratedAt.Format("01/02"), "")

	if len(d.Alerts) > 0 {
		kinds := make(map[models.AlertKind]bool)
		for _, a := range d.Alerts {
			kinds[a.Kind] = true
		}
		switch {
		case kinds[models.AlertHighSurfWarning]:
			lines = append(lines, "HIGH SURF WARNING")
		case kinds[models.AlertHighSurfAdvisory]:
			lines = append(lines, "HIGH SURF ADVISORY")
		}
		lines = append(lines, "")
	}

	if d.DiveableSites == 0 {
		lines = append(lines, "No diveable sites today")
		if d.IsBigDay() {
			lines = append(lines, fmt.Sprintf("Waves %.0f-%.0fft", d.WaveRange.Min, d.WaveRange.Max))
		}
	} else {
		lines = append(lines, fmt.Sprintf("%d/%d sites diveable", d.DiveableSites, d.TotalSites))
		if d.BestCoast != "" {
			lines = append(lines, "Best: "+d.BestCoast)
		}
	}

	if len(d.TopSites) > 0 && d.DiveableSites > 0 {
		lines = append(lines, "", "TOP SITES:")
		for i, site := range d.TopSites[:min(smsTopSites, len(d.TopSites))] {
			if !site.Diveable() {
				continue
			}
			wave := "?"
			if site.Snapshot != nil && site.Snapshot.WaveHeightFt != nil && *site.Snapshot.WaveHeightFt > 0 {
				wave = fmt.Sprintf("%.0fft", *site.Snapshot.WaveHeightFt)
			}
			lines = append(lines, fmt.Sprintf("%d. %s (%s) %s", i+1, shortenName(site.Location.Name), site.Result.Grade, wave))
		}
	}

	if allCoasts && len(d.CoastSummaries) > 0 {
		lines = append(lines, "")
		for _, c := range d.CoastSummaries[:min(3, len(d.CoastSummaries))] {
			if c.DiveableCount > 0 {
				lines = append(lines, fmt.Sprintf("%s: %d OK", c.DisplayName, c.DiveableCount))
			}
		}
	}

	if d.TideInfo != nil {
		lines = append(lines, "")
		if d.TideInfo.NextHigh != nil {
			lines = append(lines, "High: "+shortTime(d.TideInfo.NextHigh))
		}
		if d.TideInfo.NextLow != nil {
			lines = append(lines, "Low: "+shortTime(d.TideInfo.NextLow))
		}
	}

	return truncate(strings.Join(lines, "\n"), SMSMaxLength)
}

func shortenName(name string) string {
	name = nameShortener.Replace(name)
	if i := strings.Index(name, "("); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if r := []rune(name); len(r) > smsNameLen {
		name = string(r[:smsNameLen-2]) + ".."
	}
	return name
}

func shortTime(e *models.TideEvent) string {
	return strings.ToLower(e.Time.In(models.HawaiiTime).Format("3:04PM"))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
