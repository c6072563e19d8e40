// Package api defines the JSON envelope and error mapping shared by all
// HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clausewise/counselai/internal/domain"
)

// SuccessResponse is the envelope for every 2xx body.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is the envelope for every non-2xx body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// Success writes data wrapped in the success envelope.
func Success(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, SuccessResponse{Data: data})
}

// Error writes a message wrapped in the error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// HandleError maps err to a status code and writes the error envelope.
func HandleError(w http.ResponseWriter, err error) {
	Error(w, DomainErrorToHTTP(err), err.Error())
}

// DomainErrorToHTTP maps a domain error code to an HTTP status. Unavailable
// maps to 502 because it means a dependency (runner or model provider)
// failed, not this service. Anything that is not a DomainError is a 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var derr *domain.DomainError
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError
	}

	switch derr.Code {
	case domain.ErrCodeValidation, domain.ErrCodeInvalidOperation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyExists:
		return http.StatusConflict
	case domain.ErrCodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
