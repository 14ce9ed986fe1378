package noaa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

func TestNewAlertClient(t *testing.T) {
	client := NewAlertClient(nil, "")

	if client == nil {
		t.Fatal("NewAlertClient() returned nil")
	}

	if client.baseURL != "https://api.weather.gov" {
		t.Errorf("baseURL = %s, want https://api.weather.gov", client.baseURL)
	}

	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", client.httpClient.Timeout)
	}

	if client.userAgent != defaultUserAgent {
		t.Errorf("userAgent = %s, want default", client.userAgent)
	}
}

func TestNOAAAlertClient_GetRegionAlerts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alerts/active" {
			t.Errorf("path = %s, want /alerts/active", r.URL.Path)
		}
		if r.URL.Query().Get("area") != "HI" {
			t.Errorf("area = %s, want HI", r.URL.Query().Get("area"))
		}
		if r.Header.Get("User-Agent") != "reefcast-test" {
			t.Errorf("User-Agent = %s, want reefcast-test", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/geo+json")
		data, _ := os.ReadFile("../../testdata/noaa_alert_response.json")
		w.Write(data)
	}))
	defer server.Close()

	client := NewAlertClient(nil, "reefcast-test")
	client.baseURL = server.URL

	alertData, err := client.GetRegionAlerts(context.Background(), "HI")
	if err != nil {
		t.Fatalf("GetRegionAlerts() error = %v", err)
	}

	// The flash flood watch is not an ocean hazard
	if len(alertData.Alerts) != 2 {
		t.Fatalf("len(Alerts) = %d, want 2", len(alertData.Alerts))
	}

	surf := alertData.Alerts[0]
	if surf.Event != "High Surf Advisory" {
		t.Errorf("Event = %s, want High Surf Advisory", surf.Event)
	}
	if surf.Severity != models.SeverityModerate {
		t.Errorf("Severity = %s, want Moderate", surf.Severity)
	}
	if surf.Kind() != models.AlertHighSurfAdvisory {
		t.Errorf("Kind() = %s, want high_surf_advisory", surf.Kind())
	}
	if len(surf.Areas()) != 4 {
		t.Errorf("len(Areas()) = %d, want 4", len(surf.Areas()))
	}
	if surf.Onset.IsZero() || surf.Expires.IsZero() {
		t.Error("Onset and Expires should be parsed")
	}

	if alertData.Alerts[1].Kind() != models.AlertSmallCraftAdvisory {
		t.Errorf("second alert Kind() = %s, want small_craft_advisory", alertData.Alerts[1].Kind())
	}
}

func TestNOAAAlertClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewAlertClient(nil, "")
	client.baseURL = server.URL

	if _, err := client.GetRegionAlerts(context.Background(), "HI"); err == nil {
		t.Error("GetRegionAlerts() expected error, got nil")
	}
}

func TestMapSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want models.AlertSeverity
	}{
		{"Extreme", models.SeverityExtreme},
		{"Severe", models.SeveritySevere},
		{"Moderate", models.SeverityModerate},
		{"Minor", models.SeverityMinor},
		{"", models.SeverityUnknown},
	}
	for _, tt := range tests {
		if got := mapSeverity(tt.in); got != tt.want {
			t.Errorf("mapSeverity(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
