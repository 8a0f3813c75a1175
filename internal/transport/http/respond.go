package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "idport/pkg/domain-errors"
)

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError translates a domain error into an HTTP response. Unknown errors
// become opaque 500s so internals never leak to clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var dErr *dErrors.Error
	if !errors.As(err, &dErr) {
		logger.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: string(dErrors.CodeInternal)})
		return
	}

	status := statusForCode(dErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", dErr.Code, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: string(dErr.Code), Message: dErr.Message})
}

func statusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeAttemptsExceeded:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
