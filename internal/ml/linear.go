package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"battery-health/internal/features"

	"github.com/rs/zerolog/log"
)

// ModelMetadata contains information about the loaded model
type ModelMetadata struct {
	Version      string    `json:"version"`
	TrainedAt    time.Time `json:"trained_at"`
	Features     []string  `json:"feature_names"`
	R2Score      float64   `json:"r2_score"`
	TrainingRows int       `json:"training_rows"`
}

// LinearModel is a fitted linear regression over the normalized features.
type LinearModel struct {
	ModelMetadata
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`

	modelCreated time.Time
}

// LoadLinearModel reads a regression model artifact and checks it against the
// feature schema.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: "model", Path: path, Err: err}
	}

	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ArtifactLoadError{Artifact: "model", Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if !features.MatchesSchema(m.Features) {
		return nil, &ArtifactLoadError{Artifact: "model", Path: path,
			Err: mismatch("model trained on %v, expected %v", m.Features, features.Schema)}
	}
	if len(m.Coefficients) != features.NumFeatures {
		return nil, &ArtifactLoadError{Artifact: "model", Path: path,
			Err: mismatch("model has %d coefficients, expected %d", len(m.Coefficients), features.NumFeatures)}
	}

	if info, err := os.Stat(path); err == nil {
		m.modelCreated = info.ModTime()
	}

	log.Info().
		Str("model_path", path).
		Str("version", m.Version).
		Float64("intercept", m.Intercept).
		Msg("Health model loaded")
	return &m, nil
}

// Predict implements Regressor.
func (m *LinearModel) Predict(_ context.Context, x []float64) (float64, error) {
	if m == nil {
		return 0, ErrModelUnavailable
	}
	if len(x) != len(m.Coefficients) {
		return 0, mismatch("got %d features, model expects %d", len(x), len(m.Coefficients))
	}

	y := m.Intercept
	for i, c := range m.Coefficients {
		y += c * x[i]
	}
	return y, nil
}

// Age returns how long ago the artifact file was written, or zero if unknown.
func (m *LinearModel) Age() time.Duration {
	if m == nil || m.modelCreated.IsZero() {
		return 0
	}
	return time.Since(m.modelCreated)
}
