// Package ingest feeds sensor readings published over MQTT into the
// prediction session.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"battery-health/internal/features"
	"battery-health/internal/session"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Predictor records one reading.
type Predictor interface {
	Predict(ctx context.Context, r features.SensorReading) (session.Event, error)
}

// MetricsInterface defines metrics methods needed by the subscriber
type MetricsInterface interface {
	MQTTMessagesInc()
	MQTTInvalidPayloadInc()
}

// ClientConfig holds MQTT client configuration
type ClientConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Connect opens a connection to the broker with auto-reconnect enabled.
func Connect(config ClientConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Str("broker", config.Broker).Msg("MQTT connection established")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", config.Broker).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return client, nil
}

// Subscriber turns messages on a topic into session predictions.
type Subscriber struct {
	client    mqtt.Client
	topic     string
	predictor Predictor
	metrics   MetricsInterface
	timeout   time.Duration
}

// NewSubscriber creates a subscriber for topic. Each reading is given
// timeout to be scored.
func NewSubscriber(client mqtt.Client, topic string, p Predictor, metrics MetricsInterface, timeout time.Duration) *Subscriber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Subscriber{
		client:    client,
		topic:     topic,
		predictor: p,
		metrics:   metrics,
		timeout:   timeout,
	}
}

// Start subscribes to the reading topic with QoS 1.
func (s *Subscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.topic, token.Error())
	}
	log.Info().Str("topic", s.topic).Msg("Subscribed to sensor readings")
	return nil
}

// Stop unsubscribes and disconnects.
func (s *Subscriber) Stop() {
	if token := s.client.Unsubscribe(s.topic); token.WaitTimeout(time.Second) && token.Error() != nil {
		log.Warn().Err(token.Error()).Str("topic", s.topic).Msg("MQTT unsubscribe failed")
	}
	s.client.Disconnect(250)
	log.Info().Msg("MQTT subscriber stopped")
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	if s.metrics != nil {
		s.metrics.MQTTMessagesInc()
	}
	device := extractDeviceID(msg.Topic())

	reading, err := DecodeReading(msg.Payload())
	if err != nil {
		if s.metrics != nil {
			s.metrics.MQTTInvalidPayloadInc()
		}
		log.Warn().Err(err).Str("topic", msg.Topic()).Str("device", device).Msg("Discarding sensor message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	e, err := s.predictor.Predict(ctx, reading)
	if err != nil {
		// The session has already logged and counted the rejection.
		return
	}

	log.Debug().
		Str("device", device).
		Float64("score", e.Score).
		Str("suitability", e.Suitability).
		Msg("MQTT reading scored")
}

type payload struct {
	Voltage     *float64 `json:"voltage"`
	Current     *float64 `json:"current"`
	Temperature *float64 `json:"temperature"`
}

// DecodeReading parses a JSON reading. All three fields are required.
func DecodeReading(data []byte) (features.SensorReading, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return features.SensorReading{}, fmt.Errorf("invalid reading payload: %w", err)
	}
	if p.Voltage == nil || p.Current == nil || p.Temperature == nil {
		return features.SensorReading{}, errors.New("reading payload must contain voltage, current and temperature")
	}
	return features.SensorReading{
		Voltage:     *p.Voltage,
		Current:     *p.Current,
		Temperature: *p.Temperature,
	}, nil
}

// extractDeviceID returns the second level of a battery/{device}/reading topic.
func extractDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		return parts[1]
	}
	return ""
}
