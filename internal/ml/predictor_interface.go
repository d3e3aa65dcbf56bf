// Package ml provides the battery health scoring capability.
// It loads the pre-trained feature normalizer and regression model artifacts,
// checks them against the feature schema, and turns a feature vector into a
// health score.
//
// The regression stage is pluggable: a local linear model loaded from its
// JSON artifact, or a remote model server reached over HTTP.
package ml

import "context"

// Normalizer transforms raw feature values into the distribution the model
// was trained on.
type Normalizer interface {
	// Transform returns the normalized copy of x. It fails with
	// ErrFeatureMismatch when x has the wrong dimension.
	Transform(x []float64) ([]float64, error)
}

// Regressor produces the raw health output for a normalized vector.
type Regressor interface {
	// Predict returns the unrounded model output for x.
	Predict(ctx context.Context, x []float64) (float64, error)
}

// MetricsInterface defines metrics methods needed by the scorer
type MetricsInterface interface {
	MLPredictionsInc()
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
	MLPredictionScoresObserve(float64)
}
