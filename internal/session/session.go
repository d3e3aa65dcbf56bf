package session

import (
	"context"
	"sync"
	"time"

	"battery-health/internal/features"
	"battery-health/internal/health"
	"battery-health/internal/ml"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// State of a session.
type State int

const (
	// Idle means no prediction has succeeded yet.
	Idle State = iota
	// HasHistory means at least one event is recorded. It is never left.
	HasHistory
)

func (s State) String() string {
	if s == HasHistory {
		return "has_history"
	}
	return "idle"
}

// Scorer produces a health score for a feature vector.
type Scorer interface {
	Score(ctx context.Context, v features.Vector) (float64, error)
}

// Observer is notified of every appended event, in ledger order.
// OnEvent runs while the session is locked and must not block.
type Observer interface {
	OnEvent(sessionID string, e Event)
}

// MetricsInterface defines metrics methods needed by the session
type MetricsInterface interface {
	PredictionRequestsInc()
	PredictionRejectedInc()
	LedgerSizeSet(float64)
	SuitabilityInc(string)
}

// Session runs predictions one at a time and records them in its ledger.
type Session struct {
	id        string
	started   time.Time
	scorer    Scorer
	metrics   MetricsInterface
	now       func() time.Time
	mu        sync.Mutex
	ledger    *Ledger
	observers []Observer
}

// New starts a session with an empty ledger. scorer is shared read-only
// between sessions; metrics may be nil.
func New(scorer Scorer, metrics MetricsInterface) *Session {
	s := &Session{
		id:      uuid.NewString(),
		scorer:  scorer,
		metrics: metrics,
		now:     time.Now,
		ledger:  NewLedger(),
	}
	s.started = s.now()
	log.Info().Str("session_id", s.id).Msg("session started")
	return s
}

// SetClock replaces the event timestamp source.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Subscribe registers o for future events.
func (s *Session) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Started returns when the session was created.
func (s *Session) Started() time.Time { return s.started }

// Predict scores r, classifies the score and appends the resulting event.
// If scoring fails the ledger and state are left untouched and the error is
// returned.
func (s *Session) Predict(ctx context.Context, r features.SensorReading) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.PredictionRequestsInc()
	}

	v := features.Build(r)

	if s.scorer == nil {
		return Event{}, s.reject(ml.ErrModelUnavailable, r)
	}
	score, err := s.scorer.Score(ctx, v)
	if err != nil {
		return Event{}, s.reject(err, r)
	}

	e := NewEvent(s.now(), r, v, score, health.Classify(score))
	s.ledger.Append(e)

	if s.metrics != nil {
		s.metrics.LedgerSizeSet(float64(s.ledger.Len()))
		s.metrics.SuitabilityInc(e.Suitability)
	}

	log.Info().
		Str("session_id", s.id).
		Float64("voltage", r.Voltage).
		Float64("current", r.Current).
		Float64("temperature", r.Temperature).
		Float64("score", score).
		Str("suitability", e.Suitability).
		Int("history", s.ledger.Len()).
		Msg("prediction recorded")

	for _, o := range s.observers {
		o.OnEvent(s.id, e)
	}
	return e, nil
}

func (s *Session) reject(err error, r features.SensorReading) error {
	if s.metrics != nil {
		s.metrics.PredictionRejectedInc()
	}
	log.Warn().
		Err(err).
		Str("session_id", s.id).
		Float64("voltage", r.Voltage).
		Float64("current", r.Current).
		Float64("temperature", r.Temperature).
		Msg("prediction rejected")
	return err
}

// State returns Idle until the first successful prediction.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledger.Len() == 0 {
		return Idle
	}
	return HasHistory
}

// Snapshot returns a read-only copy of the history, oldest first.
func (s *Session) Snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

// Last returns the current status event; ok is false while Idle.
func (s *Session) Last() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Last()
}

// Len returns the number of recorded predictions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len()
}
