package apperror

import (
	"errors"
	"net/http"

	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

type Code string

const (
	BadRequest  Code = "BAD_REQUEST"
	NotFound    Code = "NOT_FOUND"
	Unavailable Code = "UNAVAILABLE"
	Internal    Code = "INTERNAL"
)

// JSON-RPC 2.0 error codes.
const (
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInternalError  = -32603
)

type AppError struct {
	code    Code
	message string
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

func (e *AppError) Error() string   { return e.message }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (e *AppError) RPCCode() int {
	if e.code == BadRequest {
		return RPCInvalidParams
	}
	return RPCInternalError
}

// From classifies err against the rate error taxonomy.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}

	var notFound *rate.CurrencyNotFoundError
	switch {
	case errors.As(err, &notFound):
		return New(NotFound, err.Error())
	case errors.Is(err, rate.ErrInvalidArguments):
		return New(BadRequest, err.Error())
	case errors.Is(err, rate.ErrTransport), errors.Is(err, rate.ErrMalformedResponse):
		return New(Unavailable, err.Error())
	default:
		return New(Internal, err.Error())
	}
}
