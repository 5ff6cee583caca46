package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceThrough(t *testing.T, requestID string) (string, string) {
	t.Helper()

	var fromCtx string
	h := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec.Header().Get("X-Request-ID"), fromCtx
}

func TestTracingGeneratesID(t *testing.T) {
	echoed, fromCtx := traceThrough(t, "")

	_, err := uuid.Parse(echoed)
	require.NoError(t, err)
	assert.Equal(t, echoed, fromCtx)
}

func TestTracingHonorsValidRequestID(t *testing.T) {
	supplied := uuid.NewString()
	echoed, fromCtx := traceThrough(t, supplied)

	assert.Equal(t, supplied, echoed)
	assert.Equal(t, supplied, fromCtx)
}

func TestTracingReplacesNonUUIDRequestID(t *testing.T) {
	echoed, fromCtx := traceThrough(t, "not-a-uuid'; DROP TABLE--")

	assert.NotEqual(t, "not-a-uuid'; DROP TABLE--", echoed)
	_, err := uuid.Parse(echoed)
	require.NoError(t, err)
	assert.Equal(t, echoed, fromCtx)
}
