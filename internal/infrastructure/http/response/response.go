// Package response renders JSON bodies and maps domain errors to HTTP statuses.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/todo/internal/domain"
)

// encodeFailureJSON is written when a body cannot be marshaled.
const encodeFailureJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"` // never null
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// OK sends a 200 OK response with JSON data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response with JSON data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    string(domain.KindValidation),
			Message: "validation failed",
			Details: []ErrorField{{Field: field, Issue: issue}},
		},
	})
}

// NotFound sends a 404 Not Found error naming the missing resource and id.
func NotFound(w http.ResponseWriter, resource, id string) {
	JSON(w, http.StatusNotFound, ErrorResponse{
		Error: ErrorDetail{
			Code:    string(domain.KindNotFound),
			Message: resource + " not found",
			Details: []ErrorField{{Field: "id", Issue: id}},
		},
	})
}

// InternalError sends a 500 Internal Server Error.
// The cause is logged with request context; the client only sees a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	JSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: []ErrorField{},
		},
	})
}

// FromDomainError maps an error from the service layer to an HTTP response.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			NotFound(w, nf.Resource, nf.ID)
			return
		}
		NotFound(w, "resource", "")
	case domain.KindValidation:
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			field := ve.Field
			if field == "" {
				field = "body"
			}
			ValidationError(w, field, ve.Message)
			return
		}
		ValidationError(w, "body", err.Error())
	default:
		InternalError(w, r, err)
	}
}

// JSON sends data with statusCode. The body is marshaled before anything is
// written so an encoding failure still produces a well-formed 500.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailureJSON))
		return
	}
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}
