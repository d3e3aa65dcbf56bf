package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"battery-health/internal/cfg"
	"battery-health/internal/features"
	"battery-health/internal/ml"
	"battery-health/internal/report"
	"battery-health/internal/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		scalerPath  = flag.String("scaler", "", "Path to scaler artifact (overrides config)")
		modelPath   = flag.String("model", "", "Path to model artifact (overrides config)")
		serverURL   = flag.String("server", "", "Model server URL (overrides config)")
		voltage     = flag.Float64("voltage", 48.0, "Battery voltage (V)")
		current     = flag.Float64("current", 2.0, "Battery current (A)")
		temperature = flag.Float64("temperature", 30.0, "Battery temperature (°C)")
		inputPath   = flag.String("input", "", "CSV file of voltage,current,temperature readings (replaces single reading flags)")
		outputPath  = flag.String("output", "", "Write a report to this directory")
		format      = flag.String("format", "pdf", "Report format: pdf, csv, text, json")
		logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	artifactCfg := config.Artifacts()
	if *scalerPath != "" {
		artifactCfg.ScalerPath = *scalerPath
	}
	if *modelPath != "" {
		artifactCfg.ModelPath = *modelPath
	}
	if *serverURL != "" {
		artifactCfg.RemoteURL = *serverURL
	}

	artifacts, err := ml.LoadArtifacts(artifactCfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load model artifacts")
	}

	readings := []features.SensorReading{{Voltage: *voltage, Current: *current, Temperature: *temperature}}
	if *inputPath != "" {
		readings, err = loadReadings(*inputPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read input")
		}
	}

	sess := session.New(artifacts.Scorer(nil), nil)
	ctx := context.Background()

	failed := 0
	for i, r := range readings {
		e, err := sess.Predict(ctx, r)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "reading %d: %v\n", i+1, err)
			continue
		}
		printEvent(e)
	}

	if *outputPath != "" && sess.Len() > 0 {
		if err := writeReport(*outputPath, *format, sess); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func printEvent(e session.Event) {
	fmt.Printf("Health Score:      %s%%\n", report.FormatScore(e.Score))
	fmt.Printf("Suitability:       %s (%s)\n", e.Suitability, e.Usage)
	fmt.Printf("Estimated Life:    %s\n", e.RemainingLife)
	fmt.Printf("Recommended Load:  %s\n", e.RecommendedLoad)
	fmt.Printf("Power:             %.2f W\n", e.Power)
	fmt.Println(strings.Repeat("-", 40))
}

func writeReport(dir, format string, sess *session.Session) error {
	exporter := report.NewDefaultExporter(nil)
	rep, err := exporter.Export(format, sess.ID(), sess.Snapshot())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, rep.Filename)
	if err := os.WriteFile(path, rep.Data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Report written to %s (%d rows)\n", path, rep.Rows)
	return nil
}

// loadReadings parses voltage,current,temperature rows. A non-numeric first
// row is treated as a header.
func loadReadings(path string) ([]features.SensorReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true

	var out []features.SensorReading
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var vals [3]float64
		var parseErr error
		for i, field := range rec {
			if vals[i], parseErr = strconv.ParseFloat(field, 64); parseErr != nil {
				break
			}
		}
		if parseErr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}

		out = append(out, features.SensorReading{Voltage: vals[0], Current: vals[1], Temperature: vals[2]})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s contains no readings", path)
	}
	return out, nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\nScores battery readings with the configured health model.\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}
