package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"SmartTent.api/internal/models"
)

// RespondWithError sends apiErr as {"error": message} with its status code.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) error {
	status := apiErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return RespondWithJSON(writer, status, apiErr)
}

// RespondWithJSON sends a JSON response with the specified status code.
// The status line is already written when an encode error is returned.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload interface{}) error {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}
