// Package usgs reads stream discharge from USGS Water Services
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ParamDischarge is discharge in cubic feet per second
const ParamDischarge = "00060"

// Discharge thresholds (cfs) for visibility impact
const (
	DischargeLow      = 5.0
	DischargeModerate = 20.0
	DischargeHigh     = 50.0
)

// Reading is one instantaneous value
type Reading struct {
	Time         time.Time
	DischargeCfs float64
}

// Client queries the NWIS instantaneous values service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new USGS client. A nil httpClient uses a 15s timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    "https://waterservices.usgs.gov/nwis/iv/",
		httpClient: httpClient,
	}
}

// GetDischarge returns discharge readings for the last hours, oldest first
func (c *Client) GetDischarge(ctx context.Context, siteID string, hours int) ([]Reading, error) {
	params := url.Values{}
	params.Add("sites", siteID)
	params.Add("parameterCd", ParamDischarge)
	params.Add("period", fmt.Sprintf("PT%dH", hours))
	params.Add("format", "json")
	params.Add("siteStatus", "active")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discharge data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var ivResp ivResponse
	if err := json.NewDecoder(resp.Body).Decode(&ivResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var readings []Reading
	for _, ts := range ivResp.Value.TimeSeries {
		if len(ts.Values) == 0 {
			continue
		}
		for _, v := range ts.Values[0].Value {
			cfs, err := strconv.ParseFloat(v.Value, 64)
			if err != nil || cfs < 0 {
				continue // -999999 is the NWIS no-data marker
			}
			when, _ := time.Parse(time.RFC3339, v.DateTime)
			readings = append(readings, Reading{Time: when, DischargeCfs: cfs})
		}
	}
	return readings, nil
}

// GetCurrentDischarge returns the most recent discharge for a gauge. ok is
// false when the gauge reported nothing in the last six hours.
func (c *Client) GetCurrentDischarge(ctx context.Context, siteID string) (cfs float64, ok bool, err error) {
	readings, err := c.GetDischarge(ctx, siteID, 6)
	if err != nil {
		return 0, false, err
	}
	if len(readings) == 0 {
		return 0, false, nil
	}
	return readings[len(readings)-1].DischargeCfs, true, nil
}

// Level classifies a discharge by its likely effect on visibility
func Level(cfs float64) string {
	switch {
	case cfs < DischargeLow:
		return "low"
	case cfs < DischargeModerate:
		return "moderate"
	case cfs < DischargeHigh:
		return "high"
	default:
		return "extreme"
	}
}

// Internal types for the NWIS JSON response

type ivResponse struct {
	Value struct {
		TimeSeries []struct {
			SourceInfo struct {
				SiteName string `json:"siteName"`
			} `json:"sourceInfo"`
			Values []struct {
				Value []struct {
					Value    string `json:"value"`
					DateTime string `json:"dateTime"`
				} `json:"value"`
			} `json:"values"`
		} `json:"timeSeries"`
	} `json:"value"`
}
