package errors

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorResponse represents the error response structure.
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contains the error details.
type ErrorDetails struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	RC      int32                  `json:"rc,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler writes errors from the status endpoints as JSON.
type ErrorHandler struct {
	logger *logrus.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// HTTPStatus maps an error type to the status code used on the wire.
func HTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTransport:
		return http.StatusServiceUnavailable
	case ErrorTypeInvalidFormat, ErrorTypeInvalidDimensions, ErrorTypeUnsupportedEncoding:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError handles an error and writes the appropriate response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := GetAppError(err)
	if !ok {
		appErr = WrapInternalError(err, "An unexpected error occurred")
	}

	status := HTTPStatus(appErr.Type)
	logEntry := h.logger.WithFields(logrus.Fields{
		"error_type": appErr.Type,
		"method":     r.Method,
		"path":       r.URL.Path,
	})
	if status >= http.StatusInternalServerError {
		logEntry.Error(appErr.Error())
	} else {
		logEntry.Warn(appErr.Error())
	}

	response := ErrorResponse{
		Error: ErrorDetails{
			Type:    appErr.Type,
			Message: appErr.Message,
			RC:      appErr.RC,
			Details: appErr.Details,
		},
	}

	h.writeJSON(w, status, response)
}

// HandleNotFound handles 404 errors.
func (h *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, NewNotFoundError("endpoint"))
}

// writeJSON writes a JSON response.
func (h *ErrorHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
	}
}

// Middleware returns an error handling middleware that turns handler panics
// into a 500 response.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				h.logger.WithField("panic", recovered).Error("Panic recovered in HTTP handler")
				h.HandleError(w, r, NewPanicError(recovered))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
