package cfg

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		LogLevel:     "info",
		ScalerPath:   "models/scaler.json",
		ModelPath:    "models/battery_health_model.json",
		ModelTimeout: 5 * time.Second,
		HTTPPort:     8080,
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	if err := validateSettings(createValidSettings()); err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *Settings)
		wantErr string
	}{
		{"missing scaler", func(s *Settings) { s.ScalerPath = "" }, "scaler artifact path"},
		{"missing model and server", func(s *Settings) { s.ModelPath = "" }, "model artifact path or a model server"},
		{"server only", func(s *Settings) { s.ModelPath = ""; s.ModelServer = "http://localhost:9000" }, ""},
		{"server without scheme", func(s *Settings) { s.ModelServer = "localhost:9000" }, "http(s) URL"},
		{"server with ftp scheme", func(s *Settings) { s.ModelServer = "ftp://models" }, "http(s) URL"},
		{"timeout too short", func(s *Settings) { s.ModelTimeout = 10 * time.Millisecond }, "model timeout"},
		{"timeout too long", func(s *Settings) { s.ModelTimeout = 2 * time.Minute }, "model timeout"},
		{"timeout lower bound", func(s *Settings) { s.ModelTimeout = 100 * time.Millisecond }, ""},
		{"port too low", func(s *Settings) { s.HTTPPort = 1023 }, "HTTP port"},
		{"port too high", func(s *Settings) { s.HTTPPort = 65536 }, "HTTP port"},
		{"port upper bound", func(s *Settings) { s.HTTPPort = 65535 }, ""},
		{"bad log level", func(s *Settings) { s.LogLevel = "verbose" }, "invalid log level"},
		{"empty log level", func(s *Settings) { s.LogLevel = "" }, ""},
		{"broker ok", func(s *Settings) { s.MQTT = MQTTSettings{Broker: "tcp://localhost:1883", Topic: "battery/+/reading"} }, ""},
		{"broker without topic", func(s *Settings) { s.MQTT = MQTTSettings{Broker: "tcp://localhost:1883"} }, "MQTT topic"},
		{"broker without host", func(s *Settings) { s.MQTT = MQTTSettings{Broker: "localhost", Topic: "t"} }, "MQTT broker"},
		{"negative drift window", func(s *Settings) { s.DriftWindow = -1 }, "drift window"},
		{"negative drift threshold", func(s *Settings) { s.DriftThreshold = -0.5 }, "drift window"},
		{"custom drift", func(s *Settings) { s.DriftWindow = 50; s.DriftThreshold = 2 }, ""},
		{"topic without broker", func(s *Settings) { s.MQTT = MQTTSettings{Topic: ""} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createValidSettings()
			tt.modify(s)

			err := validateSettings(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSettings_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		s := Settings{LogLevel: tt.level}
		if got := s.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
