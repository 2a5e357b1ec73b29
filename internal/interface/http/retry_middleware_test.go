package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/infra/config"
)

type flakyHandler struct {
	calls    int
	failures int
}

func (h *flakyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	if h.calls <= h.failures {
		http.Error(w, "valkey timeout", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func retryConfig() config.RetryConfig {
	return config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond, Exclude: []string{"/excluded"}}
}

func TestWithRetryReplaysReads(t *testing.T) {
	flaky := &flakyHandler{failures: 2}
	rec := httptest.NewRecorder()
	withRetry(flaky, retryConfig(), newTestLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, flaky.calls)
	require.Equal(t, "3", rec.Header().Get(retryAttemptsHeader))
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	flaky := &flakyHandler{failures: 10}
	rec := httptest.NewRecorder()
	withRetry(flaky, retryConfig(), newTestLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 3, flaky.calls)
}

func TestWithRetrySkipsWritesUpgradesAndExclusions(t *testing.T) {
	cases := map[string]*http.Request{
		"post":     httptest.NewRequest(http.MethodPost, "/health/upload_health", nil),
		"excluded": httptest.NewRequest(http.MethodGet, "/excluded", nil),
	}
	upgrade := httptest.NewRequest(http.MethodGet, "/ws", nil)
	upgrade.Header.Set("Upgrade", "websocket")
	cases["upgrade"] = upgrade

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			flaky := &flakyHandler{failures: 1}
			rec := httptest.NewRecorder()
			withRetry(flaky, retryConfig(), newTestLogger()).ServeHTTP(rec, req)
			require.Equal(t, http.StatusServiceUnavailable, rec.Code)
			require.Equal(t, 1, flaky.calls)
		})
	}
}

func TestWithRetryDisabled(t *testing.T) {
	flaky := &flakyHandler{failures: 1}
	cfg := retryConfig()
	cfg.Enabled = false
	rec := httptest.NewRecorder()
	withRetry(flaky, cfg, newTestLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 1, flaky.calls)
}
