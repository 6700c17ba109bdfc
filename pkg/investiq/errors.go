package investiq

import (
	"errors"
	"fmt"
)

// ErrorCode defines error classification codes for structured error handling.
type ErrorCode string

// Error codes for the query pipeline. Symbol and data errors surface as short
// user-facing messages; AI errors are absorbed by the analyzer fallback chain
// and never reach callers.
const (
	ErrCodeSymbolNotFound      ErrorCode = "SYMBOL_NOT_FOUND"
	ErrCodeDataNotFound        ErrorCode = "DATA_NOT_FOUND"
	ErrCodeDataRateLimited     ErrorCode = "DATA_RATE_LIMITED"
	ErrCodeDataTransient       ErrorCode = "DATA_TRANSIENT"
	ErrCodeDataTimeout         ErrorCode = "DATA_TIMEOUT"
	ErrCodeAIUnavailable       ErrorCode = "AI_UNAVAILABLE"
	ErrCodeAllSourcesExhausted ErrorCode = "ALL_SOURCES_EXHAUSTED"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with classification code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with classification code and context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the classification code from an error chain.
// Unclassified errors report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsErrorCode checks if an error matches a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// UserMessage maps an error code to the short message shown to the user.
// Raw provider error text is never surfaced.
func UserMessage(code ErrorCode) string {
	switch code {
	case ErrCodeSymbolNotFound:
		return "Could not identify a stock in your message. Try a symbol like TCS or RELIANCE."
	case ErrCodeDataNotFound:
		return "No market data found for that symbol. Please verify the stock symbol."
	case ErrCodeDataRateLimited:
		return "The market data provider is rate limiting requests. Please try again shortly."
	case ErrCodeDataTransient:
		return "The market data provider is temporarily unavailable. Please try again."
	case ErrCodeDataTimeout:
		return "Fetching market data timed out. Please try again."
	case ErrCodeInvalidInput:
		return "The request was malformed."
	default:
		return "Something went wrong while processing your request."
	}
}
