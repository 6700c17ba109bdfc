package api

import (
	"errors"
	"net/http"

	"investiq/pkg/investiq"
)

// Response represents a successful API response with unified format.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeSuccess writes a successful response with data.
func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{
		Code: 0,
		Data: data,
	})
}

// writeErrorResponse maps a pipeline error to an HTTP status and writes the
// structured error body. The message is the short user-facing text, never
// raw provider output.
func writeErrorResponse(w http.ResponseWriter, err error) {
	code := investiq.ErrCodeInternal
	var iqErr *investiq.Error
	if errors.As(err, &iqErr) {
		code = iqErr.Code
	}
	status := mapErrorCodeToHTTPStatus(code)
	writeJSON(w, status, ErrorResponse{
		Code:      status,
		Message:   investiq.UserMessage(code),
		ErrorCode: string(code),
	})
}

// mapErrorCodeToHTTPStatus maps pipeline error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code investiq.ErrorCode) int {
	switch code {
	case investiq.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case investiq.ErrCodeSymbolNotFound, investiq.ErrCodeDataNotFound:
		return http.StatusNotFound
	case investiq.ErrCodeDataRateLimited:
		return http.StatusTooManyRequests
	case investiq.ErrCodeDataTimeout:
		return http.StatusGatewayTimeout
	case investiq.ErrCodeDataTransient, investiq.ErrCodeAllSourcesExhausted:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
