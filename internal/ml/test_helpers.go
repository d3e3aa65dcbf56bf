package ml

import (
	"context"
	"sync"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu               sync.Mutex
	predictions      int
	failures         int
	latencySum       float64
	latencyCount     int
	modelAge         float64
	predictionScores []float64
}

func (m *MockMetrics) MLPredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
	m.latencyCount++
}

func (m *MockMetrics) MLModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

func (m *MockMetrics) MLPredictionScoresObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionScores = append(m.predictionScores, v)
}

// IdentityNormalizer passes features through unchanged.
type IdentityNormalizer struct{}

func (IdentityNormalizer) Transform(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	copy(out, x)
	return out, nil
}

// StubRegressor returns a fixed sequence of outputs, repeating the last one.
type StubRegressor struct {
	mu      sync.Mutex
	Outputs []float64
	Err     error
	Calls   int
	LastX   []float64
}

func (s *StubRegressor) Predict(_ context.Context, x []float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	s.LastX = append([]float64(nil), x...)
	if s.Err != nil {
		return 0, s.Err
	}
	if len(s.Outputs) == 0 {
		return 0, nil
	}
	idx := s.Calls - 1
	if idx >= len(s.Outputs) {
		idx = len(s.Outputs) - 1
	}
	return s.Outputs[idx], nil
}
