package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/form"
)

// ValidationErrorResponse is returned when a submitted form is rejected.
type ValidationErrorResponse struct {
	Error  string      `json:"error"`
	Fields form.Errors `json:"fields"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, map[string]string{"error": message}, logger)
}

// WriteValidationError writes a 400 with the per-field messages.
func WriteValidationError(w http.ResponseWriter, errs form.Errors, logger *slog.Logger) {
	WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:  "Validation failed",
		Fields: errs,
	}, logger)
}
