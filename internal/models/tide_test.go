package models

import (
	"testing"
	"time"
)

func TestTideData_GetEventsForDay(t *testing.T) {
	loc, _ := time.LoadLocation("Pacific/Honolulu")

	tests := []struct {
		name   string
		events []TideEvent
		date   time.Time
		want   int // number of events expected
	}{
		{
			name: "typical day with 2 highs and 2 lows",
			events: []TideEvent{
				{Time: time.Date(2025, 11, 27, 6, 30, 0, 0, loc), Type: TideLow, Height: 0.1},
				{Time: time.Date(2025, 11, 27, 12, 45, 0, 0, loc), Type: TideHigh, Height: 1.9},
				{Time: time.Date(2025, 11, 27, 18, 15, 0, 0, loc), Type: TideLow, Height: 0.4},
				{Time: time.Date(2025, 11, 28, 0, 30, 0, 0, loc), Type: TideHigh, Height: 1.6},
			},
			date: time.Date(2025, 11, 27, 0, 0, 0, 0, loc),
			want: 3,
		},
		{
			name: "no events for given day",
			events: []TideEvent{
				{Time: time.Date(2025, 11, 26, 12, 0, 0, 0, loc), Type: TideHigh, Height: 1.8},
				{Time: time.Date(2025, 11, 28, 12, 0, 0, 0, loc), Type: TideHigh, Height: 1.8},
			},
			date: time.Date(2025, 11, 27, 0, 0, 0, 0, loc),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := &TideData{
				StationID: "1612340",
				Events:    tt.events,
			}
			got := td.GetEventsForDay(tt.date)
			if len(got) != tt.want {
				t.Errorf("GetEventsForDay() returned %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTideData_StatusAt(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	td := &TideData{
		StationID: "1612340",
		Events: []TideEvent{
			{Time: base.Add(2 * time.Hour), Type: TideLow, Height: 0.2},
			{Time: base.Add(8 * time.Hour), Type: TideHigh, Height: 1.9},
			{Time: base.Add(14 * time.Hour), Type: TideLow, Height: 0.5},
			{Time: base.Add(20 * time.Hour), Type: TideHigh, Height: 1.5},
		},
	}

	tests := []struct {
		name      string
		now       time.Time
		wantPhase TidePhase
		wantHigh  float64
		wantLow   float64
	}{
		{"next event is low", base, TideFalling, 1.9, 0.2},
		{"next event is high", base.Add(3 * time.Hour), TideRising, 1.9, 0.5},
		{"exactly at an event skips it", base.Add(8 * time.Hour), TideFalling, 1.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := td.StatusAt(tt.now)
			if status == nil {
				t.Fatal("StatusAt() returned nil")
			}
			if status.Phase != tt.wantPhase {
				t.Errorf("Phase = %v, want %v", status.Phase, tt.wantPhase)
			}
			if status.NextHigh == nil || status.NextHigh.Height != tt.wantHigh {
				t.Errorf("NextHigh = %+v, want height %v", status.NextHigh, tt.wantHigh)
			}
			if status.NextLow == nil || status.NextLow.Height != tt.wantLow {
				t.Errorf("NextLow = %+v, want height %v", status.NextLow, tt.wantLow)
			}
		})
	}

	if status := td.StatusAt(base.Add(48 * time.Hour)); status != nil {
		t.Errorf("StatusAt() past all events = %+v, want nil", status)
	}
}

func TestTideType_Constants(t *testing.T) {
	if TideHigh != "H" {
		t.Errorf("TideHigh = %v, want 'H'", TideHigh)
	}
	if TideLow != "L" {
		t.Errorf("TideLow = %v, want 'L'", TideLow)
	}
}
