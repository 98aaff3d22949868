package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"SmartTent.api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithJSON(rec, http.StatusOK, models.SubmitResponse{Success: true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, models.ErrDeviceNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Device not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondWithError(rec, models.APIError{Message: "boom"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRespondWithJSONEncodeError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := RespondWithJSON(rec, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Error(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
