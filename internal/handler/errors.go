package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/shiftbook/internal/domain"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// notFound writes a 404. The caller supplies the message because the handler
// is the layer that knows what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message)
}

// badRequest writes a 422 for a request rejected before reaching the service
// layer (e.g. missing or malformed body).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message)
}

// badParameter writes a 400 for a path or query parameter that failed to bind.
func badParameter(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
}

// classify maps a service error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidKey):
		return http.StatusBadRequest, "invalid_key"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// serviceErrorBody builds the response body for a service error. Backend and
// unexpected error text is never exposed to the client.
func serviceErrorBody(err error) (int, errorDetail) {
	status, code := classify(err)
	var msg string
	switch code {
	case "store_unavailable":
		msg = "the shift store is unavailable, try again later"
	case "internal_error":
		msg = "internal server error"
	default:
		msg = unwrapMessage(err)
	}
	return status, errorDetail{Code: code, Message: msg}
}

// writeServiceError maps err to a response. 5xx errors are logged.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := serviceErrorBody(err)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: detail})
}

// unwrapMessage extracts the human-readable part after a wrapped sentinel.
// e.g. "service.ShiftService.Save: validation error: type is required" → "type is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{
		domain.ErrInvalidKey,
		domain.ErrValidation,
		domain.ErrSourceNotFound,
		domain.ErrNotFound,
	} {
		marker := sentinel.Error()
		i := strings.LastIndex(msg, marker)
		if i < 0 {
			continue
		}
		if rest := strings.TrimPrefix(msg[i+len(marker):], ": "); rest != "" {
			return rest
		}
		return marker
	}
	return msg
}
