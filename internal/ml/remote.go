package ml

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// PredictionRequest is the body posted to the model server
type PredictionRequest struct {
	Features []float64 `json:"features"`
}

// PredictionResponse is the model server reply
type PredictionResponse struct {
	Score        float64 `json:"score"`
	ModelVersion string  `json:"model_version,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// RemoteRegressor delegates prediction to an external model server.
type RemoteRegressor struct {
	base string
	rest *resty.Client
}

// NewRemoteRegressor creates a regressor that posts to base + "/predict".
func NewRemoteRegressor(base string, timeout time.Duration) *RemoteRegressor {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	r.SetHeader("Content-Type", "application/json")
	return &RemoteRegressor{base: strings.TrimRight(base, "/"), rest: r}
}

// Predict implements Regressor.
func (r *RemoteRegressor) Predict(ctx context.Context, x []float64) (float64, error) {
	if r == nil || r.rest == nil {
		return 0, ErrModelUnavailable
	}

	resp := &PredictionResponse{}
	httpResp, err := r.rest.R().
		SetContext(ctx).
		SetBody(PredictionRequest{Features: x}).
		SetResult(resp).
		SetError(resp).
		Post(r.base + "/predict")
	if err != nil {
		log.Error().Err(err).Str("url", r.base).Msg("Model server request failed")
		return 0, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	switch {
	case httpResp.StatusCode() == 422:
		return 0, mismatch("model server: %s", resp.Error)
	case httpResp.IsError():
		return 0, fmt.Errorf("%w: model server returned %d %s", ErrModelUnavailable, httpResp.StatusCode(), resp.Error)
	case resp.Error != "":
		return 0, fmt.Errorf("%w: model server: %s", ErrModelUnavailable, resp.Error)
	}

	log.Debug().
		Float64("score", resp.Score).
		Str("model_version", resp.ModelVersion).
		Msg("Remote prediction successful")
	return resp.Score, nil
}
