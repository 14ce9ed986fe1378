package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// LookupMarineZone asks the NWS zones API for the coastal zone containing a point
func (c *NOAAWeatherClient) LookupMarineZone(ctx context.Context, lat, lon float64) (string, error) {
	url := fmt.Sprintf("%s/zones?type=coastal&point=%.4f,%.4f", c.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching zones: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var zonesResp struct {
		Features []struct {
			Properties struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"properties"`
		} `json:"features"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&zonesResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	for _, feature := range zonesResp.Features {
		zoneID := feature.Properties.ID
		zoneName := strings.ToLower(feature.Properties.Name)

		// "https://api.weather.gov/zones/coastal/PHZ115" -> "PHZ115"
		parts := strings.Split(zoneID, "/")
		zoneCode := parts[len(parts)-1]
		if zoneCode == "" {
			continue
		}

		if feature.Properties.Type == "coastal" ||
			strings.Contains(zoneName, "waters") ||
			strings.Contains(zoneName, "channel") ||
			strings.Contains(zoneName, "coastal") {
			return zoneCode, nil
		}
	}

	return "", fmt.Errorf("no marine zone found for location %.4f, %.4f", lat, lon)
}
