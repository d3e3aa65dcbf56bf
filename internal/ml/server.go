package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"battery-health/internal/features"

	"github.com/rs/zerolog/log"
)

// ModelServer exposes a regressor over HTTP in the format RemoteRegressor
// consumes. Inputs are expected to be normalized already.
type ModelServer struct {
	regressor Regressor
	metadata  ModelMetadata
	handler   http.Handler
	server    *http.Server
}

// NewModelServer creates a new HTTP server for model serving
func NewModelServer(regressor Regressor, metadata ModelMetadata, port int) *ModelServer {
	ms := &ModelServer{
		regressor: regressor,
		metadata:  metadata,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", ms.handlePredict)
	mux.HandleFunc("/health", ms.handleHealth)
	mux.HandleFunc("/model/info", ms.handleModelInfo)
	ms.handler = mux

	ms.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return ms
}

// Handler returns the server's routes.
func (ms *ModelServer) Handler() http.Handler { return ms.handler }

// Start begins serving HTTP requests
func (ms *ModelServer) Start() error {
	log.Info().Str("addr", ms.server.Addr).Str("version", ms.metadata.Version).Msg("starting model server")
	return ms.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (ms *ModelServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

func (ms *ModelServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (ms *ModelServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.writeJSON(w, http.StatusBadRequest, PredictionResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if len(req.Features) != features.NumFeatures {
		ms.writeJSON(w, http.StatusUnprocessableEntity, PredictionResponse{
			Error: fmt.Sprintf("got %d features, expected %d", len(req.Features), features.NumFeatures),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	score, err := ms.regressor.Predict(ctx, req.Features)
	if err != nil {
		log.Error().Err(err).Msg("prediction failed")
		status := http.StatusInternalServerError
		if errors.Is(err, ErrFeatureMismatch) {
			status = http.StatusUnprocessableEntity
		}
		ms.writeJSON(w, status, PredictionResponse{Error: err.Error()})
		return
	}

	ms.writeJSON(w, http.StatusOK, PredictionResponse{
		Score:        score,
		ModelVersion: ms.metadata.Version,
	})
}

func (ms *ModelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if ms.regressor == nil {
		ms.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no model"})
		return
	}
	ms.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ms *ModelServer) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	ms.writeJSON(w, http.StatusOK, ms.metadata)
}
