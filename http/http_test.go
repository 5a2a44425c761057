package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestHandleHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	HandleHealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleReadyCheck(t *testing.T) {
	ready := false
	h := HandleReadyCheck(func() bool { return ready })

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	ready = true
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleVersion(t *testing.T) {
	w := httptest.NewRecorder()
	HandleVersion("v1.2.3")(w, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "v1.2.3", w.Body.String())
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, errors.New("bad seed").WithType("invalid_request"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), `"code":"invalid_request"`)
	require.Contains(t, w.Body.String(), "bad seed")
}

func TestMetricsPathFormatter(t *testing.T) {
	require.Equal(t, "/smoke-test", MetricsPathFormatter(http.StatusOK, "/smoke-test"))
	require.Empty(t, MetricsPathFormatter(http.StatusNotFound, "/random"))
	require.Empty(t, MetricsPathFormatter(http.StatusMethodNotAllowed, "/metrics"))
}

func TestHandleWithCORS(t *testing.T) {
	var called bool
	h := HandleWithCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.False(t, called)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.True(t, called)
}
