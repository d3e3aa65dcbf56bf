package cfg

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"battery-health/internal/common"
	"battery-health/internal/ml"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	LogLevel     string
	ScalerPath   string
	ModelPath    string
	ModelServer  string
	ModelTimeout time.Duration
	HTTPPort     int
	DataPath     string
	MQTT         MQTTSettings

	// Input drift monitoring over the last DriftWindow scored inputs
	DriftWindow    int
	DriftThreshold float64
}

// MQTTSettings configures the optional sensor feed. An empty Broker disables it.
type MQTTSettings struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"clientID"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ConfigFile struct {
	Model struct {
		ScalerPath string `yaml:"scalerPath"`
		ModelPath  string `yaml:"modelPath"`
		ServerURL  string `yaml:"serverURL"`
		Timeout    string `yaml:"timeout"`

		DriftWindow    int     `yaml:"driftWindow"`
		DriftThreshold float64 `yaml:"driftThreshold"`
	} `yaml:"model"`

	MQTT MQTTSettings `yaml:"mqtt"`

	System struct {
		LogLevel string `yaml:"logLevel"`
		DataPath string `yaml:"dataPath"`
		HTTPPort int    `yaml:"httpPort"`
	} `yaml:"system"`
}

// Load reads a .env file when present, then builds settings from the YAML
// file named by CONFIG_FILE or from the environment alone.
func Load() (Settings, error) {
	_ = godotenv.Load()

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

// Artifacts returns the model artifact locations.
func (s Settings) Artifacts() ml.ArtifactConfig {
	return ml.ArtifactConfig{
		ScalerPath:    s.ScalerPath,
		ModelPath:     s.ModelPath,
		RemoteURL:     s.ModelServer,
		RemoteTimeout: s.ModelTimeout,
	}
}

// Level parses LogLevel, falling back to info.
func (s Settings) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || s.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(config.Model.Timeout)
	if err != nil {
		timeout = common.DefaultModelTimeout
	}

	// Environment variables override the file
	settings := Settings{
		LogLevel:     getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
		ScalerPath:   getEnvOrDefault(common.EnvScalerPath, orDefault(config.Model.ScalerPath, common.DefaultScalerPath)),
		ModelPath:    getEnvOrDefault(common.EnvModelPath, orDefault(config.Model.ModelPath, common.DefaultModelPath)),
		ModelServer:  getEnvOrDefault(common.EnvModelServer, config.Model.ServerURL),
		ModelTimeout: getDurationOrDefault(common.EnvModelTimeout, timeout),
		HTTPPort:     getIntFromEnvOrConfig(common.EnvHTTPPort, config.System.HTTPPort, common.DefaultHTTPPort),
		DataPath:     getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		DriftWindow:  getIntFromEnvOrConfig(common.EnvDriftWindow, config.Model.DriftWindow, ml.DefaultDriftWindow),
		DriftThreshold: getFloatOrDefault(common.EnvDriftThreshold,
			orDefaultFloat(config.Model.DriftThreshold, ml.DefaultDriftThreshold)),
		MQTT: MQTTSettings{
			Broker:   getEnvOrDefault(common.EnvMQTTBroker, config.MQTT.Broker),
			ClientID: getEnvOrDefault(common.EnvMQTTClientID, orDefault(config.MQTT.ClientID, common.DefaultMQTTClientID)),
			Topic:    getEnvOrDefault(common.EnvMQTTTopic, orDefault(config.MQTT.Topic, common.DefaultMQTTTopic)),
			Username: getEnvOrDefault(common.EnvMQTTUsername, config.MQTT.Username),
			Password: getEnvOrDefault(common.EnvMQTTPassword, config.MQTT.Password),
		},
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		LogLevel:       getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		ScalerPath:     getEnvOrDefault(common.EnvScalerPath, common.DefaultScalerPath),
		ModelPath:      getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		ModelServer:    os.Getenv(common.EnvModelServer), // optional
		ModelTimeout:   getDurationOrDefault(common.EnvModelTimeout, common.DefaultModelTimeout),
		HTTPPort:       getIntOrDefault(common.EnvHTTPPort, common.DefaultHTTPPort),
		DataPath:       os.Getenv(common.EnvDataPath), // optional
		DriftWindow:    getIntOrDefault(common.EnvDriftWindow, ml.DefaultDriftWindow),
		DriftThreshold: getFloatOrDefault(common.EnvDriftThreshold, ml.DefaultDriftThreshold),
		MQTT: MQTTSettings{
			Broker:   os.Getenv(common.EnvMQTTBroker), // optional
			ClientID: getEnvOrDefault(common.EnvMQTTClientID, common.DefaultMQTTClientID),
			Topic:    getEnvOrDefault(common.EnvMQTTTopic, common.DefaultMQTTTopic),
			Username: os.Getenv(common.EnvMQTTUsername),
			Password: os.Getenv(common.EnvMQTTPassword),
		},
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v == "" {
		return defaultValue
	}
	return v
}

func orDefaultFloat(v, defaultValue float64) float64 {
	if v == 0 {
		return defaultValue
	}
	return v
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings checks paths, ports and timeouts before anything is started
func validateSettings(settings *Settings) error {
	if settings.ScalerPath == "" {
		return errors.New(common.ErrMsgScalerPathRequired)
	}
	if settings.ModelPath == "" && settings.ModelServer == "" {
		return errors.New(common.ErrMsgModelRequired)
	}

	if settings.ModelServer != "" {
		u, err := url.Parse(settings.ModelServer)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("model server URL must be an absolute http(s) URL, got %q", settings.ModelServer)
		}
	}

	if settings.ModelTimeout < common.MinModelTimeout || settings.ModelTimeout > common.MaxModelTimeout {
		return fmt.Errorf("model timeout must be between %v and %v, got %v",
			common.MinModelTimeout, common.MaxModelTimeout, settings.ModelTimeout)
	}

	if settings.HTTPPort < common.MinHTTPPort || settings.HTTPPort > common.MaxHTTPPort {
		return fmt.Errorf("HTTP port must be between %d and %d, got %d",
			common.MinHTTPPort, common.MaxHTTPPort, settings.HTTPPort)
	}

	if settings.DriftWindow < 0 || settings.DriftThreshold < 0 {
		return fmt.Errorf("drift window and threshold must not be negative, got %d and %v",
			settings.DriftWindow, settings.DriftThreshold)
	}

	if settings.LogLevel != "" {
		if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
		}
	}

	if settings.MQTT.Broker != "" {
		u, err := url.Parse(settings.MQTT.Broker)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("MQTT broker must be a URL such as tcp://host:1883, got %q", settings.MQTT.Broker)
		}
		if settings.MQTT.Topic == "" {
			return errors.New(common.ErrMsgMQTTTopicRequired)
		}
	}

	return nil
}
