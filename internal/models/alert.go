package models

import (
	"strings"
	"time"
)

// AlertSeverity represents the severity level of an alert
type AlertSeverity string

const (
	SeverityExtreme  AlertSeverity = "Extreme"
	SeveritySevere   AlertSeverity = "Severe"
	SeverityModerate AlertSeverity = "Moderate"
	SeverityMinor    AlertSeverity = "Minor"
	SeverityUnknown  AlertSeverity = "Unknown"
)

// AlertKind is the digest classification of an alert event
type AlertKind string

const (
	AlertHighSurfWarning    AlertKind = "high_surf_warning"
	AlertHighSurfAdvisory   AlertKind = "high_surf_advisory"
	AlertSmallCraftAdvisory AlertKind = "small_craft_advisory"
	AlertWindAdvisory       AlertKind = "wind_advisory"
	AlertOther              AlertKind = "other"
)

// Alert represents an NWS weather or marine alert
type Alert struct {
	ID          string        `json:"id"`
	Event       string        `json:"event"` // e.g., "High Surf Advisory", "Small Craft Advisory"
	Headline    string        `json:"headline"`
	Description string        `json:"description,omitempty"`
	Severity    AlertSeverity `json:"severity"`
	Urgency     string        `json:"urgency,omitempty"`   // e.g., "Immediate", "Expected"
	Certainty   string        `json:"certainty,omitempty"` // e.g., "Likely", "Possible"
	Onset       time.Time     `json:"onset"`
	Expires     time.Time     `json:"expires"`
	AreaDesc    string        `json:"area_desc,omitempty"` // "Oahu North Shore; Oahu Koolau"
	Instruction string        `json:"instruction,omitempty"`
}

// AlertData contains all active alerts for a region
type AlertData struct {
	Alerts    []Alert
	UpdatedAt time.Time
}

// IsActive checks if an alert is active at the given time
func (a *Alert) IsActive(now time.Time) bool {
	return now.After(a.Onset) && now.Before(a.Expires)
}

var marineKeywords = []string{
	"surf", "wave", "marine", "wind", "coastal", "beach",
	"rip current", "sea", "ocean", "small craft",
}

// IsMarine returns true if the event or headline mentions an ocean hazard
func (a *Alert) IsMarine() bool {
	event := strings.ToLower(a.Event)
	headline := strings.ToLower(a.Headline)
	for _, kw := range marineKeywords {
		if strings.Contains(event, kw) || strings.Contains(headline, kw) {
			return true
		}
	}
	return false
}

// Kind classifies the alert by its event name
func (a *Alert) Kind() AlertKind {
	event := strings.ToLower(a.Event)
	switch {
	case strings.Contains(event, "high surf warning"):
		return AlertHighSurfWarning
	case strings.Contains(event, "high surf advisory"):
		return AlertHighSurfAdvisory
	case strings.Contains(event, "small craft"):
		return AlertSmallCraftAdvisory
	case strings.Contains(event, "wind"):
		return AlertWindAdvisory
	default:
		return AlertOther
	}
}

// Areas splits the NWS area description into individual areas
func (a *Alert) Areas() []string {
	if a.AreaDesc == "" {
		return nil
	}
	return strings.Split(a.AreaDesc, "; ")
}
