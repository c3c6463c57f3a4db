// Package httputil provides JSON response helpers shared by handlers and middleware.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/R3E-Network/light_api/internal/errors"
	"github.com/R3E-Network/light_api/internal/logging"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	TraceID string                 `json:"trace_id,omitempty"`
}

// WriteJSON writes data as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a structured error body. The trace id is taken
// from the request context when present.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	resp := ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
	if r != nil {
		resp.TraceID = logging.GetTraceID(r.Context())
	}
	WriteJSON(w, status, resp)
}

// WriteServiceError renders err. Errors that are not ServiceErrors become a
// generic 500 so internal messages never reach clients.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = errors.Internal("Internal server error", err)
	}
	WriteErrorResponse(w, r, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message, serviceErr.Details)
}

// NotFound writes a 404 error for an unknown route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, http.StatusNotFound, string(errors.CodeNotFound), "Not found", map[string]interface{}{
		"path": r.URL.Path,
	})
}

// InternalError writes a 500 error.
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	WriteErrorResponse(w, r, http.StatusInternalServerError, string(errors.CodeInternal), message, nil)
}
