package ml

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ArtifactConfig locates the scaler and the regression stage. When RemoteURL
// is set the regression stage is served by a model server and ModelPath is
// ignored.
type ArtifactConfig struct {
	ScalerPath    string
	ModelPath     string
	RemoteURL     string
	RemoteTimeout time.Duration
}

// Artifacts is the loaded, read-only model pair shared by every session.
type Artifacts struct {
	Normalizer *StandardScaler
	Regressor  Regressor
	Metadata   ModelMetadata
}

// LoadArtifacts loads both model stages. Any failure is returned as an
// *ArtifactLoadError.
func LoadArtifacts(cfg ArtifactConfig, metrics MetricsInterface) (*Artifacts, error) {
	scaler, err := LoadScaler(cfg.ScalerPath)
	if err != nil {
		return nil, err
	}

	if cfg.RemoteURL != "" {
		log.Info().Str("url", cfg.RemoteURL).Msg("Using remote model server")
		return &Artifacts{
			Normalizer: scaler,
			Regressor:  NewRemoteRegressor(cfg.RemoteURL, cfg.RemoteTimeout),
			Metadata:   ModelMetadata{Version: "remote", Features: scaler.FeatureNames},
		}, nil
	}

	model, err := LoadLinearModel(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		metrics.MLModelAgeSet(model.Age().Seconds())
	}

	return &Artifacts{
		Normalizer: scaler,
		Regressor:  model,
		Metadata:   model.ModelMetadata,
	}, nil
}

// Scorer builds a scorer over the loaded artifacts. A nil receiver yields a
// scorer that always reports ErrModelUnavailable.
func (a *Artifacts) Scorer(metrics MetricsInterface) *Scorer {
	if a == nil {
		return NewScorer(nil, nil, metrics)
	}
	return NewScorer(a.Normalizer, a.Regressor, metrics)
}
