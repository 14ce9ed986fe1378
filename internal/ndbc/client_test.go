package ndbc

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

func fixtureServer(t *testing.T, serveSpec, serveTxt bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/51201.spec":
			if !serveSpec {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			data, _ := os.ReadFile("../../testdata/ndbc_51201.spec")
			w.Write(data)
		case "/51201.txt":
			if !serveTxt {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			data, _ := os.ReadFile("../../testdata/ndbc_51201.txt")
			w.Write(data)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil)

	if client.baseURL != "https://www.ndbc.noaa.gov/data/realtime2" {
		t.Errorf("baseURL = %s, want NDBC realtime2", client.baseURL)
	}
	if client.httpClient.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", client.httpClient.Timeout)
	}
}

func TestClient_GetSpectralData(t *testing.T) {
	server := fixtureServer(t, true, true)
	defer server.Close()

	client := NewClient(nil)
	client.baseURL = server.URL

	records, err := client.GetSpectralData(context.Background(), "51201")
	if err != nil {
		t.Fatalf("GetSpectralData() error = %v", err)
	}

	// The short trailing row is dropped, the all-missing row is kept
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	first := records[0]
	want := time.Date(2025, 7, 4, 16, 26, 0, 0, time.UTC)
	if !first.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", first.Time, want)
	}
	if first.SwellPeriodS == nil || *first.SwellPeriodS != 13.3 {
		t.Errorf("SwellPeriodS = %v, want 13.3", first.SwellPeriodS)
	}
	if first.SwellDirection != "NNW" {
		t.Errorf("SwellDirection = %s, want NNW", first.SwellDirection)
	}
	if first.MeanDirectionDeg == nil || *first.MeanDirectionDeg != 335 {
		t.Errorf("MeanDirectionDeg = %v, want 335", first.MeanDirectionDeg)
	}

	missing := records[2]
	if missing.WaveHeightM != nil || missing.SwellDirection != "" {
		t.Errorf("missing row = %+v, want nil readings", missing)
	}
}

func TestClient_GetCurrentConditions(t *testing.T) {
	server := fixtureServer(t, true, true)
	defer server.Close()

	client := NewClient(nil)
	client.baseURL = server.URL

	obs, err := client.GetCurrentConditions(context.Background(), "51201")
	if err != nil {
		t.Fatalf("GetCurrentConditions() error = %v", err)
	}

	if obs.WaveHeightFt == nil || math.Abs(*obs.WaveHeightFt-3.937) > 0.001 {
		t.Errorf("WaveHeightFt = %v, want ~3.937", obs.WaveHeightFt)
	}
	if obs.PeriodS == nil || *obs.PeriodS != 13.3 {
		t.Errorf("PeriodS = %v, want 13.3 (swell period)", obs.PeriodS)
	}
}

func TestClient_GetCurrentConditions_StandardFallback(t *testing.T) {
	server := fixtureServer(t, false, true)
	defer server.Close()

	client := NewClient(nil)
	client.baseURL = server.URL

	obs, err := client.GetCurrentConditions(context.Background(), "51201")
	if err != nil {
		t.Fatalf("GetCurrentConditions() error = %v", err)
	}

	if obs.WaveHeightFt == nil || math.Abs(*obs.WaveHeightFt-0.9*metersToFeet) > 0.001 {
		t.Errorf("WaveHeightFt = %v, want 0.9m in feet", obs.WaveHeightFt)
	}
	if obs.PeriodS == nil || *obs.PeriodS != 11 {
		t.Errorf("PeriodS = %v, want 11 (dominant period)", obs.PeriodS)
	}
	if obs.MeanDirectionDeg == nil || *obs.MeanDirectionDeg != 350 {
		t.Errorf("MeanDirectionDeg = %v, want 350", obs.MeanDirectionDeg)
	}
}

func TestClient_GetCurrentConditions_BothFeedsDown(t *testing.T) {
	server := fixtureServer(t, false, false)
	defer server.Close()

	client := NewClient(nil)
	client.baseURL = server.URL

	if _, err := client.GetCurrentConditions(context.Background(), "51201"); err == nil {
		t.Error("GetCurrentConditions() expected error when both feeds fail")
	}
}

func TestSafeFloat(t *testing.T) {
	for _, missing := range []string{"MM", "999", "99.0", "9999", "99.00", "abc"} {
		if got := safeFloat(missing); got != nil {
			t.Errorf("safeFloat(%q) = %v, want nil", missing, *got)
		}
	}
	if got := safeFloat("1.5"); got == nil || *got != 1.5 {
		t.Errorf("safeFloat(1.5) = %v, want 1.5", got)
	}
}

func TestBuoyForCoast(t *testing.T) {
	tests := []struct {
		coast models.Coast
		want  string
	}{
		{models.CoastNorthShore, "51201"},
		{models.CoastWindward, "51202"},
		{models.CoastSouthShore, "51212"},
		{models.CoastWestSide, "51212"},
		{models.CoastSoutheast, "51212"},
	}
	for _, tt := range tests {
		if got := BuoyForCoast(tt.coast).Station; got != tt.want {
			t.Errorf("BuoyForCoast(%s) = %s, want %s", tt.coast, got, tt.want)
		}
	}
}
