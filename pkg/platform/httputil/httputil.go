// Package httputil provides JSON response helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to an HTTP status and writes the standard
// error body. Internal and configuration failures omit the description so
// infrastructure details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}

	var status int
	switch code {
	case dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
		resp.Description = err.Error()
	case dErrors.CodeInvalidGeometry:
		status = http.StatusUnprocessableEntity
		resp.Description = err.Error()
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
		resp.Description = err.Error()
	case dErrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
		resp.Description = err.Error()
	default:
		status = http.StatusInternalServerError
		resp.Error = string(dErrors.CodeInternal)
	}

	WriteJSON(w, status, resp)
}
