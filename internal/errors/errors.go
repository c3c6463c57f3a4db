// Package errors provides the service error type shared by handlers and middleware.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an error kind in API responses.
type ErrorCode string

const (
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodePaymasterNotFound ErrorCode = "PAYMASTER_NOT_FOUND"
	CodeWalletNotFound    ErrorCode = "WALLET_NOT_FOUND"
	CodeUnsupportedChain  ErrorCode = "UNSUPPORTED_CHAIN"
	CodeUpstream          ErrorCode = "UPSTREAM_ERROR"
	CodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeMethodNotAllowed  ErrorCode = "METHOD_NOT_ALLOWED"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is an error carrying everything needed to render an API error response.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a detail field and returns the same error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code ErrorCode, status int, message string, err error) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var serviceErr *ServiceError
	if stderrors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

// InvalidInput reports a specific field that failed validation.
func InvalidInput(field, reason string) *ServiceError {
	return newError(CodeInvalidInput, http.StatusBadRequest, fmt.Sprintf("invalid %s", field), nil).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

// NotFound reports a missing resource with a resource-specific code.
func NotFound(code ErrorCode, message string) *ServiceError {
	return newError(code, http.StatusNotFound, message, nil)
}

// PaymasterNotFound reports a paymaster id with no stored record.
func PaymasterNotFound(id string) *ServiceError {
	return NotFound(CodePaymasterNotFound, "Paymaster not found").WithDetails("id", id)
}

// WalletNotFound reports a wallet address with no stored record.
func WalletNotFound(address string) *ServiceError {
	return NotFound(CodeWalletNotFound, "Wallet not found").WithDetails("address", address)
}

// UnsupportedChain reports a chain id without a configured gas provider.
func UnsupportedChain(chainID uint64, err error) *ServiceError {
	return newError(CodeUnsupportedChain, http.StatusBadRequest, "Unsupported chain ID", err).
		WithDetails("chain_id", chainID)
}

// Upstream reports a failed call to a third-party service.
func Upstream(message string, err error) *ServiceError {
	return newError(CodeUpstream, http.StatusBadGateway, message, err)
}

// RateLimitExceeded reports a throttled client.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return newError(CodeRateLimitExceeded, http.StatusTooManyRequests, "Too many requests", nil).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

// MethodNotAllowed reports a route hit with an unsupported verb.
func MethodNotAllowed(method string) *ServiceError {
	return newError(CodeMethodNotAllowed, http.StatusMethodNotAllowed, "Method not allowed", nil).
		WithDetails("method", method)
}

// Internal reports an unexpected failure. The message is returned to clients; err is not.
func Internal(message string, err error) *ServiceError {
	return newError(CodeInternal, http.StatusInternalServerError, message, err)
}
