package controller

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SmartTent.api/internal/metrics"
	"SmartTent.api/internal/models"
	"SmartTent.api/internal/repository"
	"SmartTent.api/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func newDataController() *DataController {
	svc := service.NewDataService(repository.NewMemoryRepository(), models.DefaultDeviceID, quietLogger(), metrics.New())
	return NewDataController(svc, quietLogger())
}

func TestHandleSubmitUnreadableBody(t *testing.T) {
	c := newDataController()
	rec := httptest.NewRecorder()

	c.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/api/data", failingReader{}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection reset")
}

func TestHandleGetUsesPathVariable(t *testing.T) {
	c := newDataController()
	c.HandleSubmit(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(`{"device_id":"tent 9"}`)))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/data/tent%209", nil), map[string]string{"device_id": "tent 9"})
	rec := httptest.NewRecorder()
	c.HandleGet(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.JSONEq(t, `{"device_id":"tent 9"}`, string(got.Data))
}

func TestHandleSensorPageRenderError(t *testing.T) {
	tmpl := template.Must(template.New("other.html").Parse("<p>nothing</p>"))
	c := NewPageController(tmpl, quietLogger())
	rec := httptest.NewRecorder()

	c.HandleSensorPage(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleSensorPage(t *testing.T) {
	tmpl := template.Must(template.New("sensor.html").Parse("<h1>Smart Tent</h1>"))
	c := NewPageController(tmpl, quietLogger())
	rec := httptest.NewRecorder()

	c.HandleSensorPage(rec, httptest.NewRequest(http.MethodGet, "/sensor", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>Smart Tent</h1>", rec.Body.String())
}

func TestHandleDataDispatchesByMethod(t *testing.T) {
	c := newDataController()

	rec := httptest.NewRecorder()
	c.HandleData(rec, httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(`{"device_id":"a"}`)))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c.HandleData(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a"`)

	rec = httptest.NewRecorder()
	c.HandleData(rec, httptest.NewRequest(http.MethodPatch, "/api/data", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
