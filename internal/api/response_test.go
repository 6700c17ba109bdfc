package api

import (
	"net/http"
	"testing"

	"investiq/pkg/investiq"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code investiq.ErrorCode
		want int
	}{
		{investiq.ErrCodeInvalidInput, http.StatusBadRequest},
		{investiq.ErrCodeSymbolNotFound, http.StatusNotFound},
		{investiq.ErrCodeDataNotFound, http.StatusNotFound},
		{investiq.ErrCodeDataRateLimited, http.StatusTooManyRequests},
		{investiq.ErrCodeDataTimeout, http.StatusGatewayTimeout},
		{investiq.ErrCodeDataTransient, http.StatusBadGateway},
		{investiq.ErrCodeAllSourcesExhausted, http.StatusBadGateway},
		{investiq.ErrCodeInternal, http.StatusInternalServerError},
		{investiq.ErrorCode("UNKNOWN"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := mapErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.code, got, tt.want)
		}
	}
}
