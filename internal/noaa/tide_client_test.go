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

func TestNewTideClient(t *testing.T) {
	client := NewTideClient(nil)

	if client == nil {
		t.Fatal("NewTideClient() returned nil")
	}

	if client.baseURL != "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter" {
		t.Errorf("baseURL = %s, want CO-OPS datagetter", client.baseURL)
	}

	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", client.httpClient.Timeout)
	}
}

func TestStationForCoast(t *testing.T) {
	tests := []struct {
		coast models.Coast
		want  string
	}{
		{models.CoastWindward, StationKaneohe},
		{models.CoastNorthShore, StationHonolulu},
		{models.CoastWestSide, StationHonolulu},
		{models.CoastSouthShore, StationHonolulu},
		{models.CoastSoutheast, StationHonolulu},
	}
	for _, tt := range tests {
		if got := StationForCoast(tt.coast); got != tt.want {
			t.Errorf("StationForCoast(%s) = %s, want %s", tt.coast, got, tt.want)
		}
	}
}

func tideServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("station") != "1612340" {
			t.Errorf("station = %s, want 1612340", query.Get("station"))
		}
		if query.Get("product") != "predictions" {
			t.Errorf("product = %s, want predictions", query.Get("product"))
		}
		if query.Get("interval") != "hilo" {
			t.Errorf("interval = %s, want hilo", query.Get("interval"))
		}

		w.Header().Set("Content-Type", "application/json")
		data, _ := os.ReadFile("../../testdata/noaa_tide_response.json")
		w.Write(data)
	}))
}

func TestNOAATideClient_GetTidePredictions(t *testing.T) {
	server := tideServer(t)
	defer server.Close()

	client := NewTideClient(nil)
	client.baseURL = server.URL

	start := time.Date(2025, 7, 4, 0, 0, 0, 0, hawaiiTime)
	tideData, err := client.GetTidePredictions(context.Background(), "1612340", start, start.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetTidePredictions() error = %v", err)
	}

	if tideData.StationName != "Honolulu" {
		t.Errorf("StationName = %s, want Honolulu", tideData.StationName)
	}

	// Two rows in the fixture are malformed and skipped
	if len(tideData.Events) != 5 {
		t.Fatalf("len(Events) = %d, want 5", len(tideData.Events))
	}

	first := tideData.Events[0]
	if first.Type != models.TideLow {
		t.Errorf("first event type = %s, want L", first.Type)
	}
	if first.Height != 0.412 {
		t.Errorf("first event height = %v, want 0.412", first.Height)
	}
	want := time.Date(2025, 7, 4, 2, 18, 0, 0, hawaiiTime)
	if !first.Time.Equal(want) {
		t.Errorf("first event time = %v, want %v", first.Time, want)
	}
}

func TestNOAATideClient_GetTideStatus(t *testing.T) {
	server := tideServer(t)
	defer server.Close()

	client := NewTideClient(nil)
	client.baseURL = server.URL

	// Between the 02:18 low and the 08:51 high
	now := time.Date(2025, 7, 4, 6, 0, 0, 0, hawaiiTime)
	status, err := client.GetTideStatus(context.Background(), "1612340", now)
	if err != nil {
		t.Fatalf("GetTideStatus() error = %v", err)
	}

	if status.Phase != models.TideRising {
		t.Errorf("Phase = %s, want rising", status.Phase)
	}
	if status.NextHigh == nil || status.NextHigh.Height != 1.687 {
		t.Errorf("NextHigh = %+v, want 1.687ft", status.NextHigh)
	}
	if status.NextLow == nil || status.NextLow.Height != 0.203 {
		t.Errorf("NextLow = %+v, want 0.203ft", status.NextLow)
	}

	// After the last prediction there is nothing to derive a phase from
	_, err = client.GetTideStatus(context.Background(), "1612340", now.AddDate(0, 0, 3))
	if err == nil {
		t.Error("GetTideStatus() after last event should fail")
	}
}

func TestNOAATideClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"api error", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": {"message": "No Predictions data was found."}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewTideClient(nil)
			client.baseURL = server.URL

			_, err := client.GetTidePredictions(context.Background(), "1612340", time.Now(), time.Now())
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestNOAATideClient_GetLatestWaterLevel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("product") != "water_level" || query.Get("date") != "latest" {
			t.Errorf("query = %s, want latest water_level", r.URL.RawQuery)
		}
		switch query.Get("station") {
		case "1612340":
			w.Write([]byte(`{"metadata": {"id": "1612340"}, "data": [{"t": "2025-07-04 06:00", "v": "1.234"}]}`))
		default:
			w.Write([]byte(`{"error": {"message": "No data was found."}}`))
		}
	}))
	defer server.Close()

	client := NewTideClient(nil)
	client.baseURL = server.URL

	level, err := client.GetLatestWaterLevel(context.Background(), "1612340")
	if err != nil {
		t.Fatalf("GetLatestWaterLevel() error = %v", err)
	}
	if level != 1.234 {
		t.Errorf("level = %v, want 1.234", level)
	}

	if _, err := client.GetLatestWaterLevel(context.Background(), "1612480"); err == nil {
		t.Error("GetLatestWaterLevel() expected error for prediction-only station")
	}
}
