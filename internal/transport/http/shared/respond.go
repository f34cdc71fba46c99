// Package shared centralizes JSON responses and domain error translation so
// every handler produces the same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "hearth/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every failure.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	FromState string            `json:"from_state,omitempty"`
	ToState   string            `json:"to_state,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP shape. Unknown errors
// collapse to an opaque 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: "internal error",
		})
		return
	}

	WriteJSON(w, statusOf(de.Code), ErrorResponse{
		Error:     string(de.Code),
		Message:   de.Message,
		Fields:    de.Fields,
		FromState: de.FromState,
		ToState:   de.ToState,
	})
}

func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeInvalidTransition, dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
