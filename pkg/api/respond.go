package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperr "github.com/matzehuels/clawdsign/pkg/errors"
)

// errorBody is the JSON shape of every failure. Optional fields carry the
// missing field names, the conflicting signature or the unknown id.
type errorBody struct {
	Error       string   `json:"error"`
	Details     string   `json:"details,omitempty"`
	Required    []string `json:"required,omitempty"`
	Signature   any      `json:"signature,omitempty"`
	SignatureID string   `json:"signatureId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes a JSON request body into v, reporting the failure itself.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Request body too large"})
	case errors.Is(err, io.EOF):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Request body required"})
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body", Details: err.Error()})
	}
	return false
}

// writeError maps a service error to its status and body. Errors without a
// code are reported as INTERNAL_ERROR.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Wrap(apperr.ErrCodeInternal, err, "Internal server error")
	}

	status := apperr.HTTPStatus(e.Code)
	body := errorBody{Error: e.Message}
	switch e.Code {
	case apperr.ErrCodeMissingFields:
		body.Required = e.Fields
	case apperr.ErrCodeAlreadyClaimed:
		body.Signature = e.Detail
	case apperr.ErrCodeSignatureNotFound:
		body.SignatureID, _ = e.Detail.(string)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(e.Message, "method", r.Method, "path", r.URL.Path, "err", err)
		if e.Cause != nil {
			body.Details = e.Cause.Error()
		}
	}
	writeJSON(w, status, body)
}
