// Package response writes enveloped JSON responses for handlers that
// sit outside the typed API layer, such as raw middleware.
package response

import (
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// ErrorBody is the machine-readable error payload.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the consistent JSON response structure. Success responses
// carry Data; failures carry Error.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		Success: status < 400,
		Data:    data,
	}

	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Error writes an error response with the given status and code.
func Error(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	}

	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("failed to encode error response", "error", err)
		}
	}
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, "RATE_LIMITED", message, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), message, logger)
}

// HandleError writes an appropriate response based on the error type.
// Domain and store errors map to their HTTP codes, everything else
// becomes a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		Error(w, domainErr.HTTPStatus(), string(domainErr.Code), domainErr.Message, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), codeForStatus(storeErr.HTTPCode()), storeErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	default:
		return string(domainerrors.CodeInternal)
	}
}
