package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/light_api/internal/errors"
	"github.com/R3E-Network/light_api/internal/logging"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteServiceError_ServiceError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/paymaster/get?id=x", nil)
	req = req.WithContext(logging.WithTraceID(req.Context(), "trace-1"))
	rec := httptest.NewRecorder()

	WriteServiceError(rec, req, errors.PaymasterNotFound("x"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeError(t, rec)
	assert.Equal(t, "PAYMASTER_NOT_FOUND", body.Code)
	assert.Equal(t, "Paymaster not found", body.Message)
	assert.Equal(t, "x", body.Details["id"])
	assert.Equal(t, "trace-1", body.TraceID)
}

func TestWriteServiceError_PlainErrorIsSanitized(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), stderrors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "/nope", body.Details["path"])
}
