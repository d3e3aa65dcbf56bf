package common

import "time"

// Environment variable keys
const (
	EnvConfigFile   = "CONFIG_FILE"
	EnvLogLevel     = "LOG_LEVEL"
	EnvScalerPath   = "SCALER_PATH"
	EnvModelPath    = "MODEL_PATH"
	EnvModelServer  = "MODEL_SERVER_URL"
	EnvModelTimeout = "MODEL_TIMEOUT"
	EnvHTTPPort     = "HTTP_PORT"
	EnvDataPath     = "DATA_PATH"
	EnvMQTTBroker   = "MQTT_BROKER"
	EnvMQTTClientID = "MQTT_CLIENT_ID"
	EnvMQTTTopic    = "MQTT_TOPIC"
	EnvMQTTUsername = "MQTT_USERNAME"
	EnvMQTTPassword = "MQTT_PASSWORD"

	EnvDriftWindow    = "DRIFT_WINDOW"
	EnvDriftThreshold = "DRIFT_THRESHOLD"
)

// Configuration defaults
const (
	DefaultLogLevel     = "info"
	DefaultScalerPath   = "models/scaler.json"
	DefaultModelPath    = "models/battery_health_model.json"
	DefaultHTTPPort     = 8080
	DefaultModelTimeout = 5 * time.Second
	DefaultMQTTClientID = "battery-health"
	DefaultMQTTTopic    = "battery/+/reading"
)

// Common error messages
const (
	ErrMsgScalerPathRequired = "scaler artifact path is required"
	ErrMsgModelRequired      = "either a model artifact path or a model server URL is required"
	ErrMsgMQTTTopicRequired  = "MQTT topic is required when a broker is configured"
)

// Validation constants
const (
	MinHTTPPort     = 1024
	MaxHTTPPort     = 65535
	MinModelTimeout = 100 * time.Millisecond
	MaxModelTimeout = time.Minute
)
