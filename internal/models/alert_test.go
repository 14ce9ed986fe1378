package models

import (
	"reflect"
	"testing"
	"time"
)

func TestAlert_IsActive(t *testing.T) {
	now := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		alert Alert
		want  bool
	}{
		{
			name: "currently active alert",
			alert: Alert{
				Onset:   now.Add(-1 * time.Hour),
				Expires: now.Add(2 * time.Hour),
			},
			want: true,
		},
		{
			name: "expired alert",
			alert: Alert{
				Onset:   now.Add(-3 * time.Hour),
				Expires: now.Add(-1 * time.Hour),
			},
			want: false,
		},
		{
			name: "future alert",
			alert: Alert{
				Onset:   now.Add(1 * time.Hour),
				Expires: now.Add(3 * time.Hour),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.alert.IsActive(now)
			if got != tt.want {
				t.Errorf("Alert.IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlert_IsMarine(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		headline string
		want     bool
	}{
		{"high surf advisory", "High Surf Advisory", "", true},
		{"small craft advisory", "Small Craft Advisory", "", true},
		{"wind advisory", "Wind Advisory", "", true},
		{"rip current statement", "Rip Current Statement", "", true},
		{"headline mentions surf", "Special Weather Statement", "Large surf expected along north shores", true},
		{"not marine - flood", "Flood Watch", "Flood Watch issued for Oahu", false},
		{"not marine - red flag", "Red Flag Warning", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := Alert{Event: tt.event, Headline: tt.headline}
			got := alert.IsMarine()
			if got != tt.want {
				t.Errorf("Alert.IsMarine() for %q = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestAlert_Kind(t *testing.T) {
	tests := []struct {
		event string
		want  AlertKind
	}{
		{"High Surf Warning", AlertHighSurfWarning},
		{"High Surf Advisory", AlertHighSurfAdvisory},
		{"Small Craft Advisory", AlertSmallCraftAdvisory},
		{"Wind Advisory", AlertWindAdvisory},
		{"High Wind Warning", AlertWindAdvisory},
		{"Flood Watch", AlertOther},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			alert := Alert{Event: tt.event}
			if got := alert.Kind(); got != tt.want {
				t.Errorf("Alert.Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlert_Areas(t *testing.T) {
	alert := Alert{AreaDesc: "Niihau; Kauai Windward; Oahu North Shore"}
	want := []string{"Niihau", "Kauai Windward", "Oahu North Shore"}
	if got := alert.Areas(); !reflect.DeepEqual(got, want) {
		t.Errorf("Alert.Areas() = %v, want %v", got, want)
	}

	empty := Alert{}
	if got := empty.Areas(); got != nil {
		t.Errorf("Alert.Areas() on empty description = %v, want nil", got)
	}
}
