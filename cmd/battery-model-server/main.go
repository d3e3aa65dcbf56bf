package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"battery-health/internal/common"
	"battery-health/internal/ml"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Serves a local model artifact for batteryd instances configured with
// MODEL_SERVER_URL.
func main() {
	var (
		modelPath = flag.String("model", common.DefaultModelPath, "Path to model artifact")
		port      = flag.Int("port", 9000, "Listen port")
		logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	model, err := ml.LoadLinearModel(*modelPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load model")
	}

	ms := ml.NewModelServer(model, model.ModelMetadata, *port)
	go func() {
		if err := ms.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("model server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ms.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("model server shutdown failed")
	}
}
