package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/twin-dashboard/internal/infra/config"
)

// retryAttemptsHeader reports how many attempts a retried read needed.
const retryAttemptsHeader = "X-Retry-Attempts"

// withRetry replays safe reads that fail with a 5xx, typically a cache or
// database hiccup behind the dashboard or forecast endpoints. Writes are never
// replayed: uploads publish events and chat turns are recorded.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	exclusions := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		exclusions[path] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exclusions[r.URL.Path]; skip || !retryable(r) {
			handler.ServeHTTP(w, r)
			return
		}

		for attempt := 1; ; attempt++ {
			buffered := newBufferedResponse(w)
			handler.ServeHTTP(buffered, r.Clone(r.Context()))
			if !buffered.failed() || attempt == cfg.MaxAttempts {
				if attempt > 1 {
					buffered.header.Set(retryAttemptsHeader, strconv.Itoa(attempt))
				}
				buffered.commit()
				return
			}
			logger.Warn("transient failure, retrying read", "path", r.URL.Path, "status", buffered.status, "attempt", attempt)

			timer := time.NewTimer(cfg.BaseBackoff << (attempt - 1))
			select {
			case <-r.Context().Done():
				timer.Stop()
				buffered.commit()
				return
			case <-timer.C:
			}
		}
	})
}

func retryable(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	// Upgrades need the raw connection, which a buffered response cannot hand over.
	return !strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	dst         http.ResponseWriter
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newBufferedResponse(dst http.ResponseWriter) *bufferedResponse {
	return &bufferedResponse{dst: dst, header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

// Flush is a no-op; gin calls it for streamed renders.
func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) failed() bool {
	return b.status >= http.StatusInternalServerError
}

func (b *bufferedResponse) commit() {
	dst := b.dst.Header()
	for k, values := range b.header {
		dst[k] = append([]string(nil), values...)
	}
	b.dst.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = b.dst.Write(b.body.Bytes())
	}
}
