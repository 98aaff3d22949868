// Package ingest feeds telemetry arriving over MQTT into the store.
package ingest

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/eclipse/paho.golang/paho"
	"github.com/sirupsen/logrus"
)

const keepAlive = 30

// Submitter stores a raw telemetry body. fallbackID names the device when the body does not.
type Submitter interface {
	SubmitFrom(ctx context.Context, fallbackID string, body []byte) (string, error)
}

// MQTTSubscriber subscribes to a telemetry topic and submits every message.
type MQTTSubscriber struct {
	broker    string
	topic     string
	clientID  string
	qos       byte
	submitter Submitter
	logger    *logrus.Logger
}

// NewMQTTSubscriber creates a subscriber for broker (host:port).
func NewMQTTSubscriber(broker, topic, clientID string, qos byte, submitter Submitter, logger *logrus.Logger) *MQTTSubscriber {
	return &MQTTSubscriber{
		broker:    broker,
		topic:     topic,
		clientID:  clientID,
		qos:       qos,
		submitter: submitter,
		logger:    logger,
	}
}

// Run connects, subscribes and blocks until ctx is done or the broker
// connection is lost.
func (s *MQTTSubscriber) Run(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.broker)
	if err != nil {
		return fmt.Errorf("connecting to MQTT broker %s: %w", s.broker, err)
	}

	lost := make(chan error, 1)
	client := paho.NewClient(paho.ClientConfig{
		Conn: conn,
		Router: paho.NewSingleHandlerRouter(func(p *paho.Publish) {
			s.Handle(ctx, p.Topic, p.Payload)
		}),
		OnClientError: func(err error) {
			s.signalLost(lost, fmt.Errorf("MQTT connection error: %w", err))
		},
		OnServerDisconnect: func(dc *paho.Disconnect) {
			s.signalLost(lost, fmt.Errorf("MQTT server disconnected: reason code %d", dc.ReasonCode))
		},
	})

	ca, err := client.Connect(ctx, &paho.Connect{
		KeepAlive:  keepAlive,
		ClientID:   s.clientID,
		CleanStart: true,
	})
	if err != nil {
		return fmt.Errorf("MQTT connect: %w", err)
	}
	if ca.ReasonCode != 0 {
		return fmt.Errorf("MQTT connect refused: reason code %d", ca.ReasonCode)
	}

	if _, err := client.Subscribe(ctx, subscription(s.topic, s.qos)); err != nil {
		client.Disconnect(&paho.Disconnect{ReasonCode: 0})
		return fmt.Errorf("subscribing to %s: %w", s.topic, err)
	}
	s.logger.WithFields(logrus.Fields{"broker": s.broker, "topic": s.topic}).Info("MQTT subscription made ✅")

	select {
	case <-ctx.Done():
		return client.Disconnect(&paho.Disconnect{ReasonCode: 0})
	case err := <-lost:
		return err
	}
}

// signalLost logs a dropped connection and hands the first error to Run.
func (s *MQTTSubscriber) signalLost(lost chan<- error, err error) {
	s.logger.WithError(err).WithField("broker", s.broker).Error("MQTT connection lost")
	select {
	case lost <- err:
	default:
	}
}

func subscription(topic string, qos byte) *paho.Subscribe {
	return &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{
			{Topic: topic, QoS: qos},
		},
	}
}

// Handle submits one MQTT message. Malformed payloads are logged and dropped.
func (s *MQTTSubscriber) Handle(ctx context.Context, topic string, payload []byte) {
	id, err := s.submitter.SubmitFrom(ctx, DeviceFromTopic(topic), payload)
	if err != nil {
		s.logger.WithError(err).WithField("topic", topic).Warn("dropping MQTT telemetry")
		return
	}
	s.logger.WithFields(logrus.Fields{"topic": topic, "device_id": id}).Debug("MQTT telemetry stored")
}

// DeviceFromTopic returns <device> for topics shaped <prefix>/<device>/telemetry,
// or "" for any other topic.
func DeviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[len(parts)-1] != "telemetry" {
		return ""
	}
	return parts[len(parts)-2]
}
