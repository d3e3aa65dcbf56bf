package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable is returned when scoring is attempted without a
	// loaded normalizer or regressor.
	ErrModelUnavailable = errors.New("health model unavailable")

	// ErrFeatureMismatch is returned when a vector or artifact disagrees with
	// the feature schema in length or order.
	ErrFeatureMismatch = errors.New("feature vector does not match model input")

	// ErrInvalidScore is returned when the model yields NaN or an infinity.
	ErrInvalidScore = errors.New("model produced a non-finite score")
)

// ArtifactLoadError reports a normalizer or model artifact that could not be
// loaded at startup.
type ArtifactLoadError struct {
	Artifact string // "scaler" or "model"
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFeatureMismatch, fmt.Sprintf(format, args...))
}
