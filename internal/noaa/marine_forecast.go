package noaa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

var (
	windRegex  = regexp.MustCompile(`(?i)\b([NESW]{1,3}|variable)\s+(?:winds?\s+)?(\d+)(?:\s+to\s+(\d+))?\s*(?:kt|knots)`)
	gustRegex  = regexp.MustCompile(`(?i)gusts?\s+(?:up\s+to\s+)?(\d+)\s*(?:kt|knots)`)
	seasRegex  = regexp.MustCompile(`(?i)(?:seas|waves|combined seas)\s+(\d+)(?:\s+to\s+(\d+))?\s*(?:ft|feet)`)
	swellRegex = regexp.MustCompile(`(?i)\b([NESW]{1,3})\s+(?:swell\s+)?(\d+)\s*(?:ft|feet)\s+at\s+(\d+)\s+seconds?`)
)

// GetMarineForecastByZone retrieves the coastal waters forecast for a zone
func (c *NOAAWeatherClient) GetMarineForecastByZone(ctx context.Context, marineZone string) (*models.ZoneForecast, error) {
	if marineZone == "" {
		return nil, fmt.Errorf("marine zone is required")
	}

	// NOAA's JSON API doesn't carry marine forecasts, use the text products instead
	// Format: https://tgftp.nws.noaa.gov/data/forecasts/marine/coastal/ph/phz115.txt
	url := fmt.Sprintf("%s/%s/%s/%s.txt",
		c.textBaseURL, determineZoneType(marineZone), getZonePrefix(marineZone), strings.ToLower(marineZone))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marine text product returned status %d for zone %s", resp.StatusCode, marineZone)
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return parseMarineTextProduct(string(textBytes), marineZone)
}

// determineZoneType returns the forecast type based on zone prefix
func determineZoneType(zone string) string {
	switch strings.ToUpper(getZonePrefix(zone)) {
	case "AN", "GM", "PH", "PZ", "PK", "LM", "LE", "LH", "LO", "LS":
		return "coastal"
	default:
		return "offshore"
	}
}

// getZonePrefix returns the two-letter prefix for the zone directory
func getZonePrefix(zone string) string {
	if len(zone) < 2 {
		return "ph"
	}
	return strings.ToLower(zone[:2])
}

// parseMarineTextProduct parses NOAA's marine text product format
func parseMarineTextProduct(text, zone string) (*models.ZoneForecast, error) {
	forecast := &models.ZoneForecast{
		Zone:      strings.ToUpper(zone),
		UpdatedAt: time.Now(),
	}

	// Periods start on a new line with ".NAME..."
	for _, chunk := range strings.Split(text, "\n.") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		parts := strings.SplitN(chunk, "...", 2)
		if len(parts) != 2 {
			continue
		}

		periodName := strings.TrimSpace(parts[0])
		if periodName == "" || strings.HasPrefix(periodName, ".") {
			continue
		}
		upper := strings.ToUpper(periodName)
		if strings.Contains(upper, "ADVISORY") || strings.Contains(upper, "WARNING") ||
			strings.Contains(upper, "WATCH") || strings.Contains(upper, "SYNOPSIS") {
			continue
		}

		// The product ends with "$$"
		periodText := strings.TrimSpace(strings.SplitN(parts[1], "$$", 2)[0])
		periodText = strings.Join(strings.Fields(periodText), " ")

		forecast.Periods = append(forecast.Periods, parseMarineForecast(periodName, periodText))
	}

	if len(forecast.Periods) == 0 {
		return nil, fmt.Errorf("no forecast periods found in text product")
	}
	return forecast, nil
}

// parseMarineForecast extracts wind and seas from one forecast period
func parseMarineForecast(periodName, text string) models.MarineForecast {
	forecast := models.MarineForecast{
		PeriodName: periodName,
		RawText:    text,
	}

	// e.g. "East winds 15 to 20 kt" or "NE winds 10 kt"
	if match := windRegex.FindStringSubmatch(expandDirections(text)); match != nil {
		speedMin, _ := strconv.ParseFloat(match[2], 64)
		speedMax := speedMin
		if match[3] != "" {
			speedMax, _ = strconv.ParseFloat(match[3], 64)
		}
		forecast.Wind = models.WindData{
			Direction: strings.ToUpper(match[1]),
			SpeedMin:  speedMin,
			SpeedMax:  speedMax,
			RawText:   match[0],
		}
		if gust := gustRegex.FindStringSubmatch(text); gust != nil {
			forecast.Wind.GustSpeed, _ = strconv.ParseFloat(gust[1], 64)
			forecast.Wind.HasGust = true
		}
	}

	// e.g. "Seas 5 to 7 ft" or "Combined seas 6 to 8 feet"
	if match := seasRegex.FindStringSubmatch(text); match != nil {
		heightMin, _ := strconv.ParseFloat(match[1], 64)
		heightMax := heightMin
		if match[2] != "" {
			heightMax, _ = strconv.ParseFloat(match[2], 64)
		}
		forecast.Seas = models.SeaState{
			HeightMin: heightMin,
			HeightMax: heightMax,
			RawText:   match[0],
		}
	}

	// e.g. "North swell 6 feet at 14 seconds"
	for _, match := range swellRegex.FindAllStringSubmatch(expandDirections(text), -1) {
		height, _ := strconv.ParseFloat(match[2], 64)
		period, _ := strconv.Atoi(match[3])
		forecast.Seas.Components = append(forecast.Seas.Components, models.WaveComponent{
			Direction: strings.ToUpper(match[1]),
			Height:    height,
			Period:    period,
		})
	}

	return forecast
}

var directionWords = strings.NewReplacer(
	"Northeast", "NE", "Northwest", "NW", "Southeast", "SE", "Southwest", "SW",
	"northeast", "NE", "northwest", "NW", "southeast", "SE", "southwest", "SW",
	"North", "N", "South", "S", "East", "E", "West", "W",
	"north", "N", "south", "S", "east", "E", "west", "W",
)

// expandDirections rewrites spelled-out compass words ("East winds") to the
// abbreviations the regexes expect
func expandDirections(text string) string {
	return directionWords.Replace(text)
}
