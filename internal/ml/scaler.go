package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"battery-health/internal/features"

	"github.com/rs/zerolog/log"
)

// StandardScaler centers and scales each feature: (x - mean) / scale.
type StandardScaler struct {
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// LoadScaler reads a scaler artifact and checks it against the feature schema.
func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: "scaler", Path: path, Err: err}
	}

	var s StandardScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &ArtifactLoadError{Artifact: "scaler", Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := s.validate(); err != nil {
		return nil, &ArtifactLoadError{Artifact: "scaler", Path: path, Err: err}
	}

	log.Info().Str("scaler_path", path).Strs("features", s.FeatureNames).Msg("Scaler loaded")
	return &s, nil
}

func (s *StandardScaler) validate() error {
	if !features.MatchesSchema(s.FeatureNames) {
		return mismatch("scaler fitted on %v, expected %v", s.FeatureNames, features.Schema)
	}
	if len(s.Mean) != features.NumFeatures || len(s.Scale) != features.NumFeatures {
		return mismatch("scaler has %d means and %d scales, expected %d",
			len(s.Mean), len(s.Scale), features.NumFeatures)
	}
	return nil
}

// Transform implements Normalizer.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if s == nil {
		return nil, ErrModelUnavailable
	}
	if len(x) != len(s.Mean) || len(x) != len(s.Scale) {
		return nil, mismatch("got %d features, scaler expects %d", len(x), len(s.Mean))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		// sklearn leaves zero-variance columns unscaled
		if scale == 0 || math.IsNaN(scale) {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}
