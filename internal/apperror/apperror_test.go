package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   Code
		wantStatus int
		wantRPC    int
	}{
		{
			name:       "currency not found",
			err:        fmt.Errorf("convert: %w", &rate.CurrencyNotFoundError{Code: "XYZ"}),
			wantCode:   NotFound,
			wantStatus: http.StatusNotFound,
			wantRPC:    RPCInternalError,
		},
		{
			name:       "invalid arguments",
			err:        fmt.Errorf("%w: missing amount", rate.ErrInvalidArguments),
			wantCode:   BadRequest,
			wantStatus: http.StatusBadRequest,
			wantRPC:    RPCInvalidParams,
		},
		{
			name:       "transport",
			err:        fmt.Errorf("%w: connection refused", rate.ErrTransport),
			wantCode:   Unavailable,
			wantStatus: http.StatusBadGateway,
			wantRPC:    RPCInternalError,
		},
		{
			name:       "malformed response",
			err:        fmt.Errorf("%w: no data sets found", rate.ErrMalformedResponse),
			wantCode:   Unavailable,
			wantStatus: http.StatusBadGateway,
			wantRPC:    RPCInternalError,
		},
		{
			name:       "unclassified",
			err:        errors.New("boom"),
			wantCode:   Internal,
			wantStatus: http.StatusInternalServerError,
			wantRPC:    RPCInternalError,
		},
		{
			name:       "already classified",
			err:        fmt.Errorf("wrapped: %w", New(BadRequest, "bad input")),
			wantCode:   BadRequest,
			wantStatus: http.StatusBadRequest,
			wantRPC:    RPCInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := From(tt.err)
			if ae.Code() != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, ae.Code())
			}
			if ae.HTTPStatus() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, ae.HTTPStatus())
			}
			if ae.RPCCode() != tt.wantRPC {
				t.Errorf("expected rpc code %d, got %d", tt.wantRPC, ae.RPCCode())
			}
			if ae.Message() == "" {
				t.Error("expected message")
			}
		})
	}
}
