package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"SmartTent.api/internal/metrics"
	"SmartTent.api/internal/models"
	"SmartTent.api/internal/repository"
	"SmartTent.api/internal/sink"
	"github.com/sirupsen/logrus"
)

const sinkTimeout = 2 * time.Second

// DataService handles the business logic for device telemetry.
type DataService struct {
	repo            repository.Repository
	sinks           []sink.Sink
	defaultDeviceID string
	logger          *logrus.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

// NewDataService creates a new DataService. Accepted readings are forwarded to sinks in order.
func NewDataService(repo repository.Repository, defaultDeviceID string, logger *logrus.Logger, m *metrics.Metrics, sinks ...sink.Sink) *DataService {
	if defaultDeviceID == "" {
		defaultDeviceID = models.DefaultDeviceID
	}
	return &DataService{
		repo:            repo,
		sinks:           sinks,
		defaultDeviceID: defaultDeviceID,
		logger:          logger,
		metrics:         m,
		now:             time.Now,
	}
}

// Submit stores body as the latest reading of the device it names.
// It returns the device id the reading was stored under, or an APIError.
func (s *DataService) Submit(ctx context.Context, body []byte) (string, error) {
	return s.SubmitFrom(ctx, "", body)
}

// SubmitFrom is Submit with a device id to use when the body has none.
// An empty fallback means the default device id.
func (s *DataService) SubmitFrom(ctx context.Context, fallbackID string, body []byte) (string, error) {
	t, err := s.parse(fallbackID, body)
	if err != nil {
		s.metrics.Submissions.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warn("❌ rejected telemetry submission")
		return "", err
	}

	s.repo.Save(t.DeviceID, t.Reading)
	s.metrics.Submissions.WithLabelValues("ok").Inc()
	s.metrics.Devices.Set(float64(s.repo.Count()))
	s.logger.WithFields(logrus.Fields{
		"device_id": t.DeviceID,
		"sensors":   string(t.Sensors()),
	}).Info("✅ telemetry received")

	s.forward(ctx, t)
	return t.DeviceID, nil
}

func (s *DataService) parse(fallbackID string, body []byte) (models.Telemetry, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return models.Telemetry{}, models.NewAPIError(models.ErrorCodeBadRequest, "request body is empty", http.StatusInternalServerError)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return models.Telemetry{}, models.NewAPIError(models.ErrorCodeInvalidFormat, fmt.Sprintf("invalid JSON body: %v", err), http.StatusInternalServerError)
	}
	if fields == nil {
		return models.Telemetry{}, models.NewAPIError(models.ErrorCodeInvalidFormat, "JSON body must be an object", http.StatusInternalServerError)
	}

	var data bytes.Buffer
	if err := json.Compact(&data, body); err != nil {
		return models.Telemetry{}, models.NewAPIError(models.ErrorCodeInvalidFormat, fmt.Sprintf("invalid JSON body: %v", err), http.StatusInternalServerError)
	}

	deviceID := fallbackID
	if deviceID == "" {
		deviceID = s.defaultDeviceID
	}
	if raw, ok := fields["device_id"]; ok {
		deviceID = deviceKey(raw)
	}

	return models.Telemetry{
		DeviceID: deviceID,
		Reading: models.Reading{
			Timestamp: s.now().Format(models.TimestampLayout),
			Data:      data.Bytes(),
		},
	}, nil
}

// deviceKey turns a device_id member into a store key. Strings are used as
// is, anything else (null included) by its compact JSON text.
func deviceKey(raw json.RawMessage) string {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "null"
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (s *DataService) forward(ctx context.Context, t models.Telemetry) {
	for _, sk := range s.sinks {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
		err := sk.Publish(sctx, t)
		cancel()
		if err != nil {
			s.metrics.SinkFailures.WithLabelValues(sk.Name()).Inc()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"sink":      sk.Name(),
				"device_id": t.DeviceID,
			}).Warn("failed to forward reading")
		}
	}
}

// List returns every stored reading.
func (s *DataService) List() models.DeviceReadings {
	return s.repo.All()
}

// Get returns the reading of one device, or models.ErrDeviceNotFound.
func (s *DataService) Get(deviceID string) (models.Reading, error) {
	reading, ok := s.repo.Get(deviceID)
	if !ok {
		return models.Reading{}, models.ErrDeviceNotFound
	}
	return reading, nil
}

// Status summarises the service state.
func (s *DataService) Status() models.Status {
	return models.Status{
		Status:      "online",
		Timestamp:   s.now().Format(models.TimestampLayout),
		DeviceCount: s.repo.Count(),
	}
}
