package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request ID, and
// the client receives the mapped core.UserMessage as JSON. The status code
// is derived from the sentinel the error wraps.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/partspec/internal/core"
	"github.com/JonMunkholm/partspec/internal/logging"
	"github.com/JonMunkholm/partspec/internal/store"
)

var (
	// ErrPublishingDisabled is returned by store endpoints when the server
	// runs without a database.
	ErrPublishingDisabled = errors.New("publishing disabled: no database configured")

	// ErrReloadDisabled is returned by /api/reload when no source file is
	// configured.
	ErrReloadDisabled = errors.New("reload disabled: no source file configured")

	errBadRequest = errors.New("bad request")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSeriesNotFound),
		errors.Is(err, core.ErrUnknownColumn),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrMissingCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPublishingDisabled),
		errors.Is(err, ErrReloadDisabled),
		errors.Is(err, core.ErrTooManyWrites):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if errors.Is(err, errBadRequest) {
		resp.Error = err.Error()
	}
	s.writeJSON(w, r, status, resp)
}

// writeJSON encodes v and writes it with status.
// Logs encoding errors since headers may already be sent.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := core.EncodeJSON(v)
	if err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
		http.Error(w, `{"error":"encode response","code":"EXP001"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		logging.FromContext(r.Context()).Debug("write response", "error", err)
	}
}

// decodeJSON reads a JSON request body of at most maxBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

const maxBody = 1 << 20
