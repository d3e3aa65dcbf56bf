// Package views derives the chart datasets shown on the session dashboard
// from a ledger snapshot. It only reshapes data; drawing is left to the
// browser.
package views

import (
	"time"

	"battery-health/internal/session"
)

// GaugeStep is a colored range on the health gauge.
type GaugeStep struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
}

// Gauge is the current-status dial.
type Gauge struct {
	Value float64     `json:"value"`
	Min   float64     `json:"min"`
	Max   float64     `json:"max"`
	Bar   string      `json:"bar"`
	Steps []GaugeStep `json:"steps"`
}

// GaugeSteps color the dial red below 30, orange to 60 and green above.
var GaugeSteps = []GaugeStep{
	{0, 30, "#ff4b4b"},
	{30, 60, "#ffa500"},
	{60, 100, "#28a745"},
}

// ScatterPoint is one event on the voltage/current/score plot.
type ScatterPoint struct {
	Voltage     float64 `json:"x"`
	Current     float64 `json:"y"`
	Score       float64 `json:"z"`
	Temperature float64 `json:"color"`
	Power       float64 `json:"size"`
}

// Bar is one event on the score-over-time chart.
type Bar struct {
	Label           string  `json:"label"`
	Score           float64 `json:"score"`
	RemainingLife   string  `json:"remainingLife"`
	RecommendedLoad string  `json:"recommendedLoad"`
}

// Status is the headline block for the newest prediction.
type Status struct {
	Time            time.Time `json:"time"`
	Suitability     string    `json:"suitability"`
	Usage           string    `json:"usage"`
	RemainingLife   string    `json:"remainingLife"`
	RecommendedLoad string    `json:"recommendedLoad"`
	Score           float64   `json:"score"`
}

// Charts bundles every dashboard dataset.
type Charts struct {
	Status  *Status        `json:"status"`
	Gauge   *Gauge         `json:"gauge"`
	Scatter []ScatterPoint `json:"scatter"`
	Bars    []Bar          `json:"bars"`
}

// NewStatus returns the status block for e.
func NewStatus(e session.Event) Status {
	return Status{
		Time:            e.Time,
		Suitability:     e.Suitability,
		Usage:           e.Usage,
		RemainingLife:   e.RemainingLife,
		RecommendedLoad: e.RecommendedLoad,
		Score:           e.Score,
	}
}

// NewGauge returns the gauge for a score. The dial range stays 0–100 even
// when the score falls outside it.
func NewGauge(score float64) Gauge {
	steps := make([]GaugeStep, len(GaugeSteps))
	copy(steps, GaugeSteps)
	return Gauge{Value: score, Min: 0, Max: 100, Bar: "#1f77b4", Steps: steps}
}

// Build derives all datasets. Status and Gauge are nil for an empty snapshot.
func Build(snapshot []session.Event) Charts {
	c := Charts{
		Scatter: make([]ScatterPoint, 0, len(snapshot)),
		Bars:    make([]Bar, 0, len(snapshot)),
	}

	for _, e := range snapshot {
		c.Scatter = append(c.Scatter, ScatterPoint{
			Voltage:     e.Voltage,
			Current:     e.Current,
			Score:       e.Score,
			Temperature: e.Temperature,
			Power:       e.Power,
		})
		c.Bars = append(c.Bars, Bar{
			Label:           e.Time.Format("15:04:05"),
			Score:           e.Score,
			RemainingLife:   e.RemainingLife,
			RecommendedLoad: e.RecommendedLoad,
		})
	}

	if n := len(snapshot); n > 0 {
		last := snapshot[n-1]
		status := NewStatus(last)
		gauge := NewGauge(last.Score)
		c.Status = &status
		c.Gauge = &gauge
	}
	return c
}
