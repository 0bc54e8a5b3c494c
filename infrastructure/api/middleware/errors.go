package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/internal/log"
	"github.com/helixml/moviefinder/internal/validation"
)

// APIError is an error with an explicit HTTP status code.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

// Error implements error.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationDetail describes one invalid request field.
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrorResponse is the 422 body for field failures.
type ValidationErrorResponse struct {
	Detail []ValidationDetail `json:"detail"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status code and writes the error body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("correlation_id", log.CorrelationID(r.Context())),
		slog.Any("error", err),
	}

	var fieldErrs *validation.RequestValidationError
	if errors.As(err, &fieldErrs) {
		logger.Info("request validation failed", attrs...)
		WriteJSON(w, http.StatusUnprocessableEntity, validationResponse(fieldErrs))
		return
	}

	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", append(attrs, slog.Int("status", status))...)
	} else {
		logger.Info("request failed", append(attrs, slog.Int("status", status))...)
	}
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

func classify(err error) (int, string) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code(), apiErr.Message()
	case errors.Is(err, movie.ErrNoSuggestions):
		return http.StatusNotFound, "No movie suggestions were produced for this request."
	case errors.Is(err, movie.ErrNoDetailsResolved):
		return http.StatusNotFound, "Could not find details for any of the suggested movies."
	case errors.Is(err, movie.ErrMalformedSuggestion):
		return http.StatusInternalServerError, "The suggestion service returned a response in an unexpected format."
	case errors.Is(err, movie.ErrUpstreamGeneration):
		return http.StatusInternalServerError, "Failed to get movie suggestions from the suggestion service."
	case errors.Is(err, movie.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func validationResponse(err *validation.RequestValidationError) ValidationErrorResponse {
	fields := err.Errors()
	details := make([]ValidationDetail, len(fields))
	for i, f := range fields {
		loc := []string{"body"}
		if f.Field() != "" {
			loc = append(loc, f.Field())
		}
		details[i] = ValidationDetail{
			Loc:  loc,
			Msg:  f.Error(),
			Type: f.Type(),
		}
	}
	return ValidationErrorResponse{Detail: details}
}
