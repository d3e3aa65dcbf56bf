package session

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"battery-health/internal/features"
	"battery-health/internal/health"
	"battery-health/internal/ml"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMetrics struct {
	requests    int
	rejected    int
	ledgerSize  float64
	suitability map[string]int
}

func (m *mockMetrics) PredictionRequestsInc()  { m.requests++ }
func (m *mockMetrics) PredictionRejectedInc()  { m.rejected++ }
func (m *mockMetrics) LedgerSizeSet(v float64) { m.ledgerSize = v }
func (m *mockMetrics) SuitabilityInc(s string) {
	if m.suitability == nil {
		m.suitability = make(map[string]int)
	}
	m.suitability[s]++
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(_ string, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func stubSession(outputs ...float64) (*Session, *ml.StubRegressor) {
	reg := &ml.StubRegressor{Outputs: outputs}
	return New(ml.NewScorer(ml.IdentityNormalizer{}, reg, nil), nil), reg
}

func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func TestSession_SinglePrediction(t *testing.T) {
	s, reg := stubSession(85.3)
	start := time.Date(2024, 6, 11, 14, 0, 0, 0, time.UTC)
	s.SetClock(fixedClock(start))

	assert.Equal(t, Idle, s.State())
	_, ok := s.Last()
	assert.False(t, ok)

	e, err := s.Predict(context.Background(), features.SensorReading{Voltage: 52.0, Current: 2.0, Temperature: 30.0})
	require.NoError(t, err)

	assert.Equal(t, []float64{52.0, 2.0, 30.0, 104.0}, reg.LastX)
	assert.Equal(t, 85.3, e.Score)
	assert.Equal(t, 104.0, e.Power)
	assert.Equal(t, "2–3 Years", e.RemainingLife)
	assert.Equal(t, "High (≤500W)", e.RecommendedLoad)
	assert.Equal(t, "Excellent", e.Suitability)
	assert.Equal(t, start.Add(time.Second), e.Time)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, HasHistory, s.State())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 85.3, last.Score)
}

func TestSession_SequentialPredictionsKeepOrder(t *testing.T) {
	s, _ := stubSession(85, 45, 10)
	s.SetClock(fixedClock(time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)))

	for i := 0; i < 3; i++ {
		_, err := s.Predict(context.Background(), features.SensorReading{Voltage: 48, Current: 1, Temperature: 25})
		require.NoError(t, err)
	}

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []float64{85, 45, 10}, []float64{snap[0].Score, snap[1].Score, snap[2].Score})
	assert.Equal(t, "Excellent", snap[0].Suitability)
	assert.Equal(t, "Fair", snap[1].Suitability)
	assert.Equal(t, "Critical", snap[2].Suitability)
	assert.True(t, snap[0].Time.Before(snap[1].Time))
	assert.True(t, snap[1].Time.Before(snap[2].Time))

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, snap[2], last)
}

func TestSession_ScorerFailureLeavesLedgerUntouched(t *testing.T) {
	metrics := &mockMetrics{}
	reg := &ml.StubRegressor{Outputs: []float64{72}}
	s := New(ml.NewScorer(ml.IdentityNormalizer{}, reg, nil), metrics)
	reading := features.SensorReading{Voltage: 50, Current: 2, Temperature: 30}

	_, err := s.Predict(context.Background(), reading)
	require.NoError(t, err)

	reg.Err = ml.ErrFeatureMismatch
	_, err = s.Predict(context.Background(), reading)
	assert.ErrorIs(t, err, ml.ErrFeatureMismatch)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, HasHistory, s.State())
	assert.Equal(t, 2, metrics.requests)
	assert.Equal(t, 1, metrics.rejected)
	assert.Equal(t, 1.0, metrics.ledgerSize)
	assert.Equal(t, map[string]int{"Good": 1}, metrics.suitability)
}

func TestSession_ModelUnavailableStaysIdle(t *testing.T) {
	tests := []struct {
		name   string
		scorer Scorer
	}{
		{"nil scorer", nil},
		{"scorer without artifacts", (*ml.Artifacts)(nil).Scorer(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.scorer, nil)
			_, err := s.Predict(context.Background(), features.SensorReading{Voltage: 52, Current: 2, Temperature: 30})

			assert.ErrorIs(t, err, ml.ErrModelUnavailable)
			assert.Equal(t, Idle, s.State())
			assert.Equal(t, 0, s.Len())
			assert.Empty(t, s.Snapshot())
		})
	}
}

func TestSession_ObserversSeeEventsInOrder(t *testing.T) {
	s, _ := stubSession(90, 55, 31, 2)
	rec := &recorder{}
	s.Subscribe(rec)

	for i := 0; i < 4; i++ {
		_, err := s.Predict(context.Background(), features.SensorReading{Voltage: 50, Current: 1, Temperature: 20})
		require.NoError(t, err)
	}

	assert.Equal(t, s.Snapshot(), rec.events)
}

func TestSession_ConcurrentPredictionsAreSerialized(t *testing.T) {
	s, reg := stubSession(60)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Predict(context.Background(), features.SensorReading{Voltage: 50, Current: 1, Temperature: 20})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	assert.Equal(t, 50, reg.Calls)
}

func TestSession_IDsAreDistinct(t *testing.T) {
	a, _ := stubSession(1)
	b, _ := stubSession(1)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.False(t, a.Started().IsZero())
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r := features.SensorReading{Voltage: 12.5, Current: 3.3, Temperature: 41}
	v := features.Build(r)

	e := NewEvent(at, r, v, 44.4, health.Classify(44.4))

	assert.Equal(t, at, e.Time)
	assert.Equal(t, 41.25, e.Power)
	assert.Equal(t, health.TierFair, e.Tier)
	assert.Equal(t, "Low (<50W)", e.RecommendedLoad)
}

func TestNew_LogsSessionStartOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	s := New(nil, nil)

	assert.Equal(t, 1, strings.Count(buf.String(), "session started"))
	assert.Contains(t, buf.String(), s.ID())
}
