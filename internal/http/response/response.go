// Package response provides the uniform JSON envelope and error mapping for
// the HTTP API.
package response

import (
	"github.com/go-json-experiment/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	domainerrors "github.com/markhavenapp/markhaven-server/internal/errors"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

// Status values for the envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the uniform response shape. Every endpoint, success or
// failure, returns exactly this structure; absent parts are null, never
// omitted, so clients can destructure unconditionally.
type Envelope struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Data     any          `json:"data"`
	Metadata any          `json:"metadata"`
	Errors   []FieldError `json:"errors"`
}

// JSON writes an envelope with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	// json/v2 MarshalWrite doesn't add a newline, but that's fine for HTTP responses.
	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful response (200 OK).
func Success(w http.ResponseWriter, message string, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}, logger)
}

// SuccessPage writes a successful response carrying pagination metadata.
func SuccessPage(w http.ResponseWriter, message string, data any, metadata store.PageMetadata, logger *slog.Logger) {
	JSON(w, http.StatusOK, Envelope{
		Status:   StatusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	}, logger)
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, message string, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}, logger)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, message string, fieldErrors []FieldError, logger *slog.Logger) {
	JSON(w, status, Envelope{
		Status:  StatusError,
		Message: message,
		Errors:  fieldErrors,
	}, logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, message, nil, logger)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, message, nil, logger)
}

// Forbidden writes a 403 Forbidden response.
func Forbidden(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusForbidden, message, nil, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, message, nil, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, message, nil, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, "internal server error", nil, logger)
}

// HandleError writes the HTTP response for a service or store error.
// Domain errors and store errors map to their status codes; anything else is
// logged and becomes an opaque 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		Error(w, domainErr.HTTPStatus(), domainErr.Message, fieldErrorsFromDetails(domainErr.Details), logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), storeErr.Message, nil, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, logger)
}

// fieldErrorsFromDetails converts validation details into the envelope's
// errors list, sorted by field for stable output.
func fieldErrorsFromDetails(details any) []FieldError {
	byField, ok := details.(map[string]string)
	if !ok || len(byField) == 0 {
		return nil
	}

	fields := make([]string, 0, len(byField))
	for field := range byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]FieldError, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldError{Field: field, Message: byField[field]})
	}
	return out
}
