package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"SmartTent.api/internal/metrics"
	"SmartTent.api/internal/models"
	"SmartTent.api/internal/repository"
	"SmartTent.api/internal/sink"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name string
	err  error
	got  []models.Telemetry
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Publish(_ context.Context, t models.Telemetry) error {
	r.got = append(r.got, t)
	return r.err
}

func newTestService(sinks ...*recordingSink) (*DataService, *metrics.Metrics) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := metrics.New()

	var ss []sink.Sink
	for _, s := range sinks {
		ss = append(ss, s)
	}
	svc := NewDataService(repository.NewMemoryRepository(), models.DefaultDeviceID, logger, m, ss...)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 9, 15, 30, 250000000, time.Local) }
	return svc, m
}

func TestSubmitUsesDefaultDevice(t *testing.T) {
	svc, _ := newTestService()

	id, err := svc.Submit(context.Background(), []byte(`{"sensors":{"temp":21.5}}`))
	require.NoError(t, err)
	assert.Equal(t, "smart_tent_001", id)

	got, err := svc.Get("smart_tent_001")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19T09:15:30.250000", got.Timestamp)
	assert.JSONEq(t, `{"sensors":{"temp":21.5}}`, string(got.Data))
}

func TestSubmitUsesDeviceIDFromBody(t *testing.T) {
	svc, _ := newTestService()

	id, err := svc.Submit(context.Background(), []byte(`{"device_id":"tent_42","sensors":{"humidity":60}}`))
	require.NoError(t, err)
	assert.Equal(t, "tent_42", id)

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, "tent_42", list[0].DeviceID)

	_, err = svc.Get("smart_tent_001")
	assert.ErrorIs(t, err, models.ErrDeviceNotFound)
}

func TestSubmitNonStringDeviceID(t *testing.T) {
	svc, _ := newTestService()

	id, err := svc.Submit(context.Background(), []byte(`{"device_id":42}`))
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestSubmitNullDeviceID(t *testing.T) {
	svc, _ := newTestService()

	id, err := svc.Submit(context.Background(), []byte(`{"device_id":null,"sensors":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "null", id)

	got, err := svc.Get("null")
	require.NoError(t, err)
	assert.JSONEq(t, `{"device_id":null,"sensors":{}}`, string(got.Data))
	assert.Equal(t, 1, svc.Status().DeviceCount)
}

func TestSubmitFromUsesFallbackOnlyWithoutDeviceID(t *testing.T) {
	svc, _ := newTestService()

	id, err := svc.SubmitFrom(context.Background(), "tent_7", []byte(`{"sensors":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "tent_7", id)

	id, err = svc.SubmitFrom(context.Background(), "tent_7", []byte(`{"device_id":"tent_8"}`))
	require.NoError(t, err)
	assert.Equal(t, "tent_8", id)
}

func TestSubmitOverwritesSameDevice(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Submit(context.Background(), []byte(`{"device_id":"tent_42","sensors":{"temp":20}}`))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), []byte(`{"device_id":"tent_42","sensors":{"temp":25}}`))
	require.NoError(t, err)

	assert.Len(t, svc.List(), 1)
	got, err := svc.Get("tent_42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"device_id":"tent_42","sensors":{"temp":25}}`, string(got.Data))
}

func TestSubmitRejectsInvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"malformed", `{"sensors":`},
		{"array", `[1,2,3]`},
		{"string", `"hello"`},
		{"null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()

			_, err := svc.Submit(context.Background(), []byte(tt.body))
			require.Error(t, err)

			var apiErr models.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
			assert.NotEmpty(t, apiErr.Message)
			assert.Equal(t, 0, svc.Status().DeviceCount)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("error")))
		})
	}
}

func TestSubmitForwardsToSinks(t *testing.T) {
	failing := &recordingSink{name: "redis", err: errors.New("connection refused")}
	ok := &recordingSink{name: "live"}
	svc, m := newTestService(failing, ok)

	id, err := svc.Submit(context.Background(), []byte(`{"device_id":"tent_42"}`))
	require.NoError(t, err, "sink failures must not reject a submission")
	assert.Equal(t, "tent_42", id)

	require.Len(t, ok.got, 1)
	assert.Equal(t, "tent_42", ok.got[0].DeviceID)
	assert.Len(t, failing.got, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkFailures.WithLabelValues("redis")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Devices))
}

func TestStatusCountsDistinctDevices(t *testing.T) {
	svc, _ := newTestService()
	for _, body := range []string{`{"device_id":"a"}`, `{"device_id":"b"}`, `{"device_id":"a"}`, `{}`} {
		_, err := svc.Submit(context.Background(), []byte(body))
		require.NoError(t, err)
	}

	st := svc.Status()
	assert.Equal(t, "online", st.Status)
	assert.Equal(t, "2026-10-19T09:15:30.250000", st.Timestamp)
	assert.Equal(t, 3, st.DeviceCount)
}
