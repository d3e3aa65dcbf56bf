package ml

import (
	"context"
	"math"
	"time"

	"battery-health/internal/features"

	"github.com/rs/zerolog/log"
)

// Scorer turns a feature vector into a health score using the injected
// normalizer and regressor.
type Scorer struct {
	normalizer Normalizer
	regressor  Regressor
	metrics    MetricsInterface
	drift      *DriftMonitor
}

// NewScorer creates a scorer. Either stage may be nil, in which case every
// call to Score fails with ErrModelUnavailable.
func NewScorer(n Normalizer, r Regressor, metrics MetricsInterface) *Scorer {
	return &Scorer{normalizer: n, regressor: r, metrics: metrics}
}

// SetDriftMonitor records every successfully scored input in d.
func (s *Scorer) SetDriftMonitor(d *DriftMonitor) {
	s.drift = d
}

// Available reports whether both model stages are present.
func (s *Scorer) Available() bool {
	return s != nil && s.normalizer != nil && s.regressor != nil
}

// Score returns the model output for v rounded to two decimals.
func (s *Scorer) Score(ctx context.Context, v features.Vector) (float64, error) {
	if !s.Available() {
		return 0, ErrModelUnavailable
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.MLLatencyObserve(time.Since(start).Seconds())
		}
	}()

	scaled, err := s.normalizer.Transform(v.Slice())
	if err != nil {
		return 0, s.fail(err, v)
	}

	raw, err := s.regressor.Predict(ctx, scaled)
	if err != nil {
		return 0, s.fail(err, v)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, s.fail(ErrInvalidScore, v)
	}

	score := features.Round2(raw)
	s.drift.Observe(v)
	if s.metrics != nil {
		s.metrics.MLPredictionsInc()
		s.metrics.MLPredictionScoresObserve(score)
	}
	return score, nil
}

func (s *Scorer) fail(err error, v features.Vector) error {
	if s.metrics != nil {
		s.metrics.MLFailuresInc()
	}
	log.Error().Err(err).Floats64("features", v[:]).Msg("Health scoring failed")
	return err
}
