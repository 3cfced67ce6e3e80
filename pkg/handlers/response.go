// Package handlers exposes the HTTP surface: upload, ask, datasets, history,
// and health.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error response.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	_ = WriteJSON(w, statusCode, ErrorBody{Error: errorCode, Message: message})
}

// WriteError maps pipeline errors onto HTTP statuses. Safety-validation
// failures surface a canned category message with the reason list; raw
// internals are never the sole surfaced message.
func WriteError(w http.ResponseWriter, err error) {
	var schemaErr *apperrors.SchemaError
	if errors.As(err, &schemaErr) {
		ErrorResponse(w, http.StatusBadRequest, "invalid_schema", schemaErr.Error())
		return
	}

	if errors.Is(err, apperrors.ErrEmptyUpload) {
		ErrorResponse(w, http.StatusBadRequest, "empty_upload", apperrors.ErrEmptyUpload.Error())
		return
	}

	if errors.Is(err, apperrors.ErrNoSuitableTable) || errors.Is(err, apperrors.ErrNotFound) {
		ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	var rejected *apperrors.SQLRejectedError
	if errors.As(err, &rejected) {
		_ = WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{
			Error:   "sql_rejected",
			Message: "The generated query failed safety validation and was not executed.",
			Reasons: rejected.Reasons,
		})
		return
	}

	var execErr *apperrors.ExecutionError
	if errors.As(err, &execErr) {
		ErrorResponse(w, http.StatusBadGateway, "execution_failed", execErr.Detail)
		return
	}

	ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
