// Package session holds the prediction history of one interactive session and
// the controller that fills it.
//
// A Session owns exactly one Ledger. The ledger is append-only: events are
// never updated, removed, deduplicated or persisted, and insertion order is
// chronological order.
package session

import (
	"time"

	"battery-health/internal/features"
	"battery-health/internal/health"
)

// Event is one completed prediction.
type Event struct {
	Time        time.Time `json:"time"`
	Voltage     float64   `json:"voltage"`
	Current     float64   `json:"current"`
	Temperature float64   `json:"temperature"`
	Power       float64   `json:"power"`
	Score       float64   `json:"score"`
	health.Bands
}

// NewEvent assembles an event from the pipeline outputs.
func NewEvent(at time.Time, r features.SensorReading, v features.Vector, score float64, b health.Bands) Event {
	return Event{
		Time:        at,
		Voltage:     r.Voltage,
		Current:     r.Current,
		Temperature: r.Temperature,
		Power:       v.Power(),
		Score:       score,
		Bands:       b,
	}
}

// Ledger is the ordered record of a session's predictions.
type Ledger struct {
	events []Event
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds e as the newest entry.
func (l *Ledger) Append(e Event) {
	l.events = append(l.events, e)
}

// Snapshot returns a copy of all events, oldest first.
func (l *Ledger) Snapshot() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Last returns the newest event. ok is false when the ledger is empty.
func (l *Ledger) Last() (e Event, ok bool) {
	if len(l.events) == 0 {
		return Event{}, false
	}
	return l.events[len(l.events)-1], true
}

// Len returns the number of events.
func (l *Ledger) Len() int {
	return len(l.events)
}
