package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"battery-health/internal/cfg"
	"battery-health/internal/dashboard"
	"battery-health/internal/ingest"
	"battery-health/internal/metrics"
	"battery-health/internal/ml"
	"battery-health/internal/report"
	"battery-health/internal/session"
	"battery-health/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(c.Level())

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	artifacts, err := ml.LoadArtifacts(c.Artifacts(), mw)
	if err != nil {
		var loadErr *ml.ArtifactLoadError
		if errors.As(err, &loadErr) {
			log.Fatal().Err(err).Str("artifact", loadErr.Artifact).Str("path", loadErr.Path).Msg("model artifacts unavailable")
		}
		log.Fatal().Err(err).Msg("model artifacts unavailable")
	}
	log.Info().
		Str("model_version", artifacts.Metadata.Version).
		Strs("features", artifacts.Metadata.Features).
		Msg("model artifacts loaded")

	scorer := artifacts.Scorer(mw)
	scorer.SetDriftMonitor(ml.NewDriftMonitor(artifacts.Normalizer, c.DriftWindow, c.DriftThreshold, mw))
	sess := session.New(scorer, mw)

	exporter := report.NewDefaultExporter(mw)
	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
		exporter.SetArchive(store)
	}

	var reports dashboard.ReportStore
	if store != nil {
		reports = store
	}
	dash := dashboard.New(sess, exporter, reports, c.HTTPPort)
	sess.Subscribe(dash)
	if err := dash.Start(); err != nil {
		log.Fatal().Err(err).Msg("dashboard start failed")
	}

	sub := startSubscriber(c, sess, mw)

	waitForShutdown()

	if sub != nil {
		sub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dash.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("dashboard shutdown incomplete")
	}

	log.Info().
		Str("session_id", sess.ID()).
		Int("predictions", sess.Len()).
		Msg("session ended")
}

// initializeStorage opens the report archive if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath != "" {
		store, err := storage.New(c.DataPath)
		if err != nil {
			log.Warn().Err(err).Msg("report archive initialization failed, continuing without it")
			return nil
		}
		return store
	}
	return nil
}

// startSubscriber connects the MQTT feed when a broker is configured
func startSubscriber(c cfg.Settings, sess *session.Session, mw *metrics.MetricsWrapper) *ingest.Subscriber {
	if c.MQTT.Broker == "" {
		return nil
	}

	client, err := ingest.Connect(ingest.ClientConfig{
		Broker:   c.MQTT.Broker,
		ClientID: c.MQTT.ClientID,
		Username: c.MQTT.Username,
		Password: c.MQTT.Password,
	})
	if err != nil {
		log.Warn().Err(err).Msg("MQTT unavailable, continuing with HTTP input only")
		return nil
	}

	sub := ingest.NewSubscriber(client, c.MQTT.Topic, sess, mw, c.ModelTimeout)
	if err := sub.Start(); err != nil {
		log.Warn().Err(err).Msg("MQTT subscription failed, continuing with HTTP input only")
		client.Disconnect(250)
		return nil
	}
	return sub
}

// waitForShutdown blocks until SIGINT or SIGTERM
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutting down gracefully...")
}
