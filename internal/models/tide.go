package models

import "time"

// TideType represents whether a tide is high or low
type TideType string

const (
	TideHigh TideType = "H"
	TideLow  TideType = "L"
)

// TidePhase is the state of the tide at a moment in time
type TidePhase string

const (
	TideRising    TidePhase = "rising"
	TideFalling   TidePhase = "falling"
	TidePhaseHigh TidePhase = "high"
	TidePhaseLow  TidePhase = "low"
)

// TideEvent represents a single high or low tide occurrence
type TideEvent struct {
	Time   time.Time `json:"time"`
	Type   TideType  `json:"type"`
	Height float64   `json:"height_ft"` // feet relative to MLLW (Mean Lower Low Water)
}

// TideData contains tide predictions for a station
type TideData struct {
	StationID   string
	StationName string
	Events      []TideEvent // Ordered by time
	UpdatedAt   time.Time
}

// GetEventsForDay returns tide events for a specific date
func (td *TideData) GetEventsForDay(date time.Time) []TideEvent {
	var events []TideEvent
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	for _, event := range td.Events {
		if event.Time.After(startOfDay) && event.Time.Before(endOfDay) {
			events = append(events, event)
		}
	}
	return events
}

// UpcomingEvents returns up to count events strictly after now
func (td *TideData) UpcomingEvents(now time.Time, count int) []TideEvent {
	var events []TideEvent
	for _, event := range td.Events {
		if !event.Time.After(now) {
			continue
		}
		events = append(events, event)
		if len(events) == count {
			break
		}
	}
	return events
}

// TideStatus is the tide situation at one moment, derived from predictions
type TideStatus struct {
	Phase    TidePhase
	NextHigh *TideEvent
	NextLow  *TideEvent
}

// StatusAt derives the tide phase from the next predicted event: rising when
// the next event is a high, falling when it is a low. Nil when no events remain.
func (td *TideData) StatusAt(now time.Time) *TideStatus {
	upcoming := td.UpcomingEvents(now, 4)
	if len(upcoming) == 0 {
		return nil
	}

	status := &TideStatus{Phase: TideFalling}
	if upcoming[0].Type == TideHigh {
		status.Phase = TideRising
	}

	for i := range upcoming {
		event := upcoming[i]
		if event.Type == TideHigh && status.NextHigh == nil {
			status.NextHigh = &event
		}
		if event.Type == TideLow && status.NextLow == nil {
			status.NextLow = &event
		}
	}
	return status
}
