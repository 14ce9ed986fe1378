package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

// NOAAAlertClient implements AlertClient using the NOAA Weather API
type NOAAAlertClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewAlertClient creates a new NOAA alert client. A nil httpClient uses a 30s timeout.
func NewAlertClient(httpClient *http.Client, userAgent string) *NOAAAlertClient {
	return &NOAAAlertClient{
		baseURL:    "https://api.weather.gov",
		httpClient: orDefaultClient(httpClient),
		userAgent:  userAgentOrDefault(userAgent),
	}
}

// GetRegionAlerts retrieves active alerts for an area (e.g. "HI") and keeps
// only the ones about ocean hazards
func (c *NOAAAlertClient) GetRegionAlerts(ctx context.Context, area string) (*models.AlertData, error) {
	requestURL := fmt.Sprintf("%s/alerts/active?area=%s", c.baseURL, url.QueryEscape(area))

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var alertResp alertResponse
	if err := json.NewDecoder(resp.Body).Decode(&alertResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	alertData := &models.AlertData{
		Alerts:    make([]models.Alert, 0),
		UpdatedAt: time.Now(),
	}

	for _, feature := range alertResp.Features {
		props := feature.Properties

		onset, _ := time.Parse(time.RFC3339, props.Onset)
		expires, _ := time.Parse(time.RFC3339, props.Expires)

		id := props.ID
		if id == "" {
			id = feature.ID
		}

		alert := models.Alert{
			ID:          id,
			Event:       props.Event,
			Headline:    props.Headline,
			Description: props.Description,
			Severity:    mapSeverity(props.Severity),
			Urgency:     props.Urgency,
			Certainty:   props.Certainty,
			Onset:       onset,
			Expires:     expires,
			AreaDesc:    props.AreaDesc,
			Instruction: props.Instruction,
		}

		if alert.IsMarine() {
			alertData.Alerts = append(alertData.Alerts, alert)
		}
	}

	return alertData, nil
}

func mapSeverity(s string) models.AlertSeverity {
	switch s {
	case "Extreme":
		return models.SeverityExtreme
	case "Severe":
		return models.SeveritySevere
	case "Moderate":
		return models.SeverityModerate
	case "Minor":
		return models.SeverityMinor
	default:
		return models.SeverityUnknown
	}
}

// Internal types for NOAA Alert API responses

type alertResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			ID          string `json:"id"`
			Event       string `json:"event"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
			Severity    string `json:"severity"`
			Urgency     string `json:"urgency"`
			Certainty   string `json:"certainty"`
			Onset       string `json:"onset"`
			Expires     string `json:"expires"`
			AreaDesc    string `json:"areaDesc"`
			Instruction string `json:"instruction"`
		} `json:"properties"`
	} `json:"features"`
}
