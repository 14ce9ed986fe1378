// Package cwb checks Hawaii Department of Health Clean Water Branch beach
// advisories (brown water, sewage spills, closures)
package cwb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoAdvisories is returned when neither the advisory API nor the
// advisory page could be read
var ErrNoAdvisories = errors.New("no advisory source available")

// Advisory is one posted beach advisory
type Advisory struct {
	ID         string `json:"id,omitempty"`
	Beach      string `json:"beach"`
	Island     string `json:"island,omitempty"`
	Type       string `json:"type"`
	Reason     string `json:"reason,omitempty"`
	PostedDate string `json:"posted_date,omitempty"`
	Status     string `json:"status"`
}

// Client reads advisories from the DOH API, falling back to the public page
type Client struct {
	apiURL     string
	pageURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new CWB client. A nil httpClient uses a 15s timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		apiURL:     "https://eha-cloud.doh.hawaii.gov/cwb/api/advisories",
		pageURL:    "https://health.hawaii.gov/cwb/clean-water-branch-beach-advisories/",
		httpClient: httpClient,
		userAgent:  "reefcast/1.0 (dive-conditions)",
	}
}

// GetAdvisories returns every posted advisory. The API is tried first; the
// page is scraped when the API fails or lists nothing.
func (c *Client) GetAdvisories(ctx context.Context) ([]Advisory, error) {
	advisories, apiErr := c.fetchAPI(ctx)
	if apiErr == nil && len(advisories) > 0 {
		return advisories, nil
	}

	scraped, scrapeErr := c.fetchPage(ctx)
	if scrapeErr == nil {
		return scraped, nil
	}
	if apiErr == nil {
		// API answered with an empty list
		return advisories, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoAdvisories, errors.Join(apiErr, scrapeErr))
}

// GetOahuAdvisories returns the advisories that concern Oahu
func (c *Client) GetOahuAdvisories(ctx context.Context) ([]Advisory, error) {
	all, err := c.GetAdvisories(ctx)
	if err != nil {
		return nil, err
	}
	return FilterOahu(all), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) fetchAPI(ctx context.Context) ([]Advisory, error) {
	body, err := c.get(ctx, c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch advisories: %w", err)
	}

	var items []apiAdvisory
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode advisories: %w", err)
	}

	advisories := make([]Advisory, 0, len(items))
	for _, item := range items {
		a := Advisory{
			Beach:      firstNonEmpty(item.BeachName, item.Location),
			Island:     item.Island,
			Type:       firstNonEmpty(item.AdvisoryType, item.Type),
			Reason:     firstNonEmpty(item.Reason, item.Description),
			PostedDate: firstNonEmpty(item.PostedDate, item.StartDate),
			Status:     firstNonEmpty(item.Status, "active"),
		}
		if item.ID != nil {
			a.ID = fmt.Sprint(item.ID)
		}
		advisories = append(advisories, a)
	}
	return advisories, nil
}

func (c *Client) fetchPage(ctx context.Context) ([]Advisory, error) {
	body, err := c.get(ctx, c.pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch advisory page: %w", err)
	}
	return parsePage(strings.NewReader(string(body)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Internal types for the DOH advisory API

type apiAdvisory struct {
	ID           any    `json:"id"`
	BeachName    string `json:"beach_name"`
	Location     string `json:"location"`
	Island       string `json:"island"`
	AdvisoryType string `json:"advisory_type"`
	Type         string `json:"type"`
	Reason       string `json:"reason"`
	Description  string `json:"description"`
	PostedDate   string `json:"posted_date"`
	StartDate    string `json:"start_date"`
	Status       string `json:"status"`
}
