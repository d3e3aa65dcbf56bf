package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteRegressor_Predict(t *testing.T) {
	var got PredictionRequest
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PredictionResponse{Score: 63.456, ModelVersion: "v3"})
	})

	reg := NewRemoteRegressor(srv.URL+"/", time.Second)
	y, err := reg.Predict(context.Background(), []float64{1, 0, -1, 4})

	require.NoError(t, err)
	assert.Equal(t, 63.456, y)
	assert.Equal(t, []float64{1, 0, -1, 4}, got.Features)
}

func TestRemoteRegressor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    PredictionResponse
		wantErr error
	}{
		{"shape rejected", http.StatusUnprocessableEntity, PredictionResponse{Error: "expected 4 features"}, ErrFeatureMismatch},
		{"server failure", http.StatusInternalServerError, PredictionResponse{Error: "model not loaded"}, ErrModelUnavailable},
		{"error in ok body", http.StatusOK, PredictionResponse{Error: "warming up"}, ErrModelUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			})

			_, err := NewRemoteRegressor(srv.URL, time.Second).Predict(context.Background(), []float64{0, 0, 0, 0})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRemoteRegressor_Unreachable(t *testing.T) {
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	_, err := NewRemoteRegressor(url, 200*time.Millisecond).Predict(context.Background(), []float64{0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrModelUnavailable)

	var nilReg *RemoteRegressor
	_, err = nilReg.Predict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
