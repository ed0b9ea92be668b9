package apperrors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error     bool           `json:"error"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Handler turns errors into HTTP responses and logs them.
type Handler struct {
	logger *zap.Logger
	debug  bool
}

func NewHandler(logger *zap.Logger, debug bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, debug: debug}
}

// Handle writes err as a JSON error response. Errors that are not AppErrors
// become a generic 500 so internals don't leak outside debug mode.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetReqID(r.Context())

	appErr := GetAppError(err)
	if appErr == nil {
		h.logger.Error("unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
		)
		msg := "An internal error occurred"
		if h.debug {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, ErrorResponse{
			Error:     true,
			Type:      string(ErrorTypeInternal),
			Message:   msg,
			RequestID: requestID,
		})
		return
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	fields := []zap.Field{
		zap.String("type", string(appErr.Type)),
		zap.String("message", appErr.Message),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
		zap.Int("status", status),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request rejected", fields...)
	}

	writeError(w, status, ErrorResponse{
		Error:     true,
		Type:      string(appErr.Type),
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: requestID,
	})
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
