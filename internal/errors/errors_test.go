package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServiceError_Wrapped(t *testing.T) {
	base := PaymasterNotFound("pm-1")
	wrapped := fmt.Errorf("lookup: %w", base)

	got := GetServiceError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodePaymasterNotFound, got.Code)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	assert.Equal(t, "pm-1", got.Details["id"])
}

func TestGetServiceError_Plain(t *testing.T) {
	assert.Nil(t, GetServiceError(nil))
	assert.Nil(t, GetServiceError(stderrors.New("boom")))
}

func TestServiceError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := Upstream("gas provider request failed", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestGetServiceError_ChainDetails(t *testing.T) {
	err := fmt.Errorf("wrap: %w", UnsupportedChain(5, nil))
	serviceErr := GetServiceError(err)
	if assert.NotNil(t, serviceErr) {
		assert.Equal(t, CodeUnsupportedChain, serviceErr.Code)
		assert.Equal(t, uint64(5), serviceErr.Details["chain_id"])
	}
}

func TestRateLimitExceeded(t *testing.T) {
	err := RateLimitExceeded(100, "30s")
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
	assert.Equal(t, 100, err.Details["limit"])
	assert.Equal(t, "30s", err.Details["window"])
}
