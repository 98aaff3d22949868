package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SmartTent.api/internal/models"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
)

const measurement = "tent_telemetry"

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxDBSink writes the numeric and boolean sensors of each reading as an InfluxDB point.
type InfluxDBSink struct {
	client influxdb2.Client
	writer pointWriter
	org    string
	bucket string
}

// NewInfluxDBSink creates a sink writing to the given org and bucket.
func NewInfluxDBSink(url, token, org, bucket string) *InfluxDBSink {
	client := influxdb2.NewClient(url, token)
	return &InfluxDBSink{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
		org:    org,
		bucket: bucket,
	}
}

func (s *InfluxDBSink) Name() string { return "influxdb" }

// Ping checks the server health.
func (s *InfluxDBSink) Ping(ctx context.Context) error {
	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != domain.HealthCheckStatusPass {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	return nil
}

// EnsureBucket creates the bucket in the organization if it does not exist yet.
func (s *InfluxDBSink) EnsureBucket(ctx context.Context) (created bool, err error) {
	bucketsAPI := s.client.BucketsAPI()
	if _, err := bucketsAPI.FindBucketByName(ctx, s.bucket); err == nil {
		return false, nil
	}

	org, err := s.client.OrganizationsAPI().FindOrganizationByName(ctx, s.org)
	if err != nil {
		return false, fmt.Errorf("finding organization '%s': %w", s.org, err)
	}
	if _, err := bucketsAPI.CreateBucketWithName(ctx, org, s.bucket); err != nil {
		return false, fmt.Errorf("creating bucket '%s': %w", s.bucket, err)
	}
	return true, nil
}

// Publish writes one point tagged with the device id. Readings without
// numeric or boolean sensors are skipped.
func (s *InfluxDBSink) Publish(ctx context.Context, t models.Telemetry) error {
	fields := SensorFields(t.Reading)
	if len(fields) == 0 {
		return nil
	}

	ts, err := time.ParseInLocation(models.TimestampLayout, t.Timestamp, time.Local)
	if err != nil {
		ts = time.Now()
	}

	p := influxdb2.NewPoint(
		measurement,
		map[string]string{"device_id": t.DeviceID},
		fields,
		ts,
	)
	if err := s.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (s *InfluxDBSink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// SensorFields extracts the flat numeric and boolean members of the payload's
// "sensors" object.
func SensorFields(r models.Reading) map[string]interface{} {
	var body struct {
		Sensors map[string]interface{} `json:"sensors"`
	}
	if err := json.Unmarshal(r.Data, &body); err != nil {
		return nil
	}

	fields := make(map[string]interface{})
	for name, v := range body.Sensors {
		switch val := v.(type) {
		case float64, bool:
			fields[name] = val
		}
	}
	return fields
}
