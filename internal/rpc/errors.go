package rpc

import (
	"errors"
	"fmt"

	"github.com/automeal/automeal-server/internal/catalog"
	"github.com/automeal/automeal-server/internal/service"
	"github.com/automeal/automeal-server/internal/store"
)

// JSON-RPC 2.0 reserved codes plus server-defined domain codes in the
// -32000..-32099 range. The legacy envelope reuses the same error object.
const (
	CodeParseError        = -32700
	CodeInvalidRequest    = -32600
	CodeMethodNotFound    = -32601
	CodeInvalidParams     = -32602
	CodeInternalError     = -32000
	CodeNotFound          = -32001
	CodeValidation        = -32002
	CodeMixedRestaurant   = -32003
	CodeInvalidTransition = -32004
)

// Error is a protocol-level error carried in a response envelope.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func newError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// translateError maps a domain error to its protocol error. This is
// the single point where catalog, store and lifecycle errors become
// wire-visible codes.
func translateError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	switch {
	case errors.Is(err, catalog.ErrDishNotFound),
		errors.Is(err, catalog.ErrRestaurantNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrDeliveryNotFound),
		errors.Is(err, service.ErrDishNotFound):
		return newError(CodeNotFound, err.Error())

	case errors.Is(err, service.ErrMixedRestaurants):
		return newError(CodeMixedRestaurant, err.Error())

	case errors.Is(err, store.ErrInvalidTransition):
		return newError(CodeInvalidTransition, err.Error())

	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPromo),
		errors.Is(err, store.ErrDuplicateOrder):
		return newError(CodeValidation, err.Error())

	default:
		return newError(CodeInternalError, "internal error")
	}
}
