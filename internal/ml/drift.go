package ml

import (
	"container/ring"
	"math"
	"sync"

	"battery-health/internal/features"

	"github.com/rs/zerolog/log"
)

const (
	DefaultDriftWindow    = 100
	DefaultDriftThreshold = 3.0
)

// DriftMetrics is the subset of metrics the drift monitor publishes.
type DriftMetrics interface {
	FeatureDriftSet(feature string, v float64)
}

// DriftMonitor compares the mean of recently scored inputs with the scaler's
// training baseline. Shift is measured in baseline standard deviations.
type DriftMonitor struct {
	mu        sync.RWMutex
	baseline  *StandardScaler
	ring      *ring.Ring
	count     int
	threshold float64
	drifting  [features.NumFeatures]bool
	metrics   DriftMetrics
}

// NewDriftMonitor keeps the last window inputs. Non-positive arguments fall
// back to the defaults.
func NewDriftMonitor(baseline *StandardScaler, window int, threshold float64, metrics DriftMetrics) *DriftMonitor {
	if window <= 0 {
		window = DefaultDriftWindow
	}
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}
	return &DriftMonitor{
		baseline:  baseline,
		ring:      ring.New(window),
		threshold: threshold,
		metrics:   metrics,
	}
}

// Observe records a scored input and refreshes the drift gauges.
func (d *DriftMonitor) Observe(v features.Vector) {
	if d == nil || d.baseline == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.ring.Value = v
	d.ring = d.ring.Next()
	if d.count < d.ring.Len() {
		d.count++
	}

	shifts := d.shiftsLocked()
	for i, shift := range shifts {
		name := features.Schema[i]
		if d.metrics != nil {
			d.metrics.FeatureDriftSet(name, shift)
		}

		over := shift > d.threshold
		if over && !d.drifting[i] {
			log.Warn().
				Str("feature", name).
				Float64("shift", shift).
				Float64("threshold", d.threshold).
				Int("window", d.count).
				Msg("Input drift detected")
		} else if !over && d.drifting[i] {
			log.Info().Str("feature", name).Float64("shift", shift).Msg("Input drift cleared")
		}
		d.drifting[i] = over
	}
}

// Shifts returns the current shift per feature keyed by schema name.
func (d *DriftMonitor) Shifts() map[string]float64 {
	out := make(map[string]float64, features.NumFeatures)
	if d == nil || d.baseline == nil {
		return out
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for i, shift := range d.shiftsLocked() {
		out[features.Schema[i]] = shift
	}
	return out
}

// Drifting reports whether any feature is past the threshold.
func (d *DriftMonitor) Drifting() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, b := range d.drifting {
		if b {
			return true
		}
	}
	return false
}

func (d *DriftMonitor) shiftsLocked() [features.NumFeatures]float64 {
	var sums [features.NumFeatures]float64
	d.ring.Do(func(x any) {
		if v, ok := x.(features.Vector); ok {
			for i := range v {
				sums[i] += v[i]
			}
		}
	})

	var shifts [features.NumFeatures]float64
	if d.count == 0 {
		return shifts
	}
	for i := range sums {
		mean := sums[i] / float64(d.count)
		scale := d.baseline.Scale[i]
		if scale == 0 || math.IsNaN(scale) {
			scale = 1
		}
		shifts[i] = math.Abs(mean-d.baseline.Mean[i]) / scale
	}
	return shifts
}
