package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultDeviceID is used when a submission does not name its device.
const DefaultDeviceID = "smart_tent_001"

// TimestampLayout is the ISO-8601 local time layout of reading timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Reading is the latest telemetry snapshot received from a device.
type Reading struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Sensors returns the raw "sensors" member of the payload, or an empty object.
func (r Reading) Sensors() json.RawMessage {
	var body struct {
		Sensors json.RawMessage `json:"sensors"`
	}
	if err := json.Unmarshal(r.Data, &body); err != nil || len(body.Sensors) == 0 {
		return json.RawMessage("{}")
	}
	return body.Sensors
}

// Telemetry is a reading tagged with the device it was stored under.
type Telemetry struct {
	DeviceID string `json:"device_id"`
	Reading
}

// DeviceReadings holds the store content in listing order. It encodes as a
// JSON object keyed by device id, keeping that order.
type DeviceReadings []Telemetry

func (d DeviceReadings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("encoding device id %q: %w", t.DeviceID, err)
		}
		val, err := json.Marshal(t.Reading)
		if err != nil {
			return nil, fmt.Errorf("encoding reading of %q: %w", t.DeviceID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Status is the service summary returned by /api/status.
type Status struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DeviceCount int    `json:"device_count"`
}

// SubmitResponse acknowledges a stored reading.
type SubmitResponse struct {
	Success bool `json:"success"`
}
