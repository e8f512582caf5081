package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/comptrack/internal/adapters/ledger"
	"github.com/okian/comptrack/internal/adapters/sheet"
	"github.com/okian/comptrack/internal/domain/aggregate"
	"github.com/okian/comptrack/internal/domain/upsert"
	"github.com/okian/comptrack/pkg/metrics"
)

// MetricsMiddleware wraps a handler and records request count, latency and
// error metrics for one endpoint. The handler reports the failure behind an
// error status through the recorder, so the error-type label names the
// domain condition rather than a bare status bucket.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		durationMs := float64(time.Since(start).Milliseconds())
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, durationMs)

		if rec.status >= http.StatusBadRequest {
			kind := errorKind(rec.status, rec.cause)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByType(kind, errorSeverity(rec.status))
			metrics.RecordErrorLatency("http", kind, durationMs)
		}
	}
}

// errorKind labels an error response for metrics. Known sentinels get their
// own label; anything else falls back to the status class.
func errorKind(status int, cause error) string {
	switch {
	case errors.Is(cause, aggregate.ErrNoData):
		return "no_matching_records"
	case errors.Is(cause, upsert.ErrCompositionUnknown):
		return "unknown_composition"
	case errors.Is(cause, ledger.ErrEventNotFound):
		return "unknown_reminder"
	case errors.Is(cause, sheet.ErrUnknownComposition), errors.Is(cause, sheet.ErrNoRows):
		return "sheet_miss"
	case errors.Is(cause, aggregate.ErrBadFilter):
		return "bad_filter"
	}
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

// errorSeverity grades an error status for the severity label.
func errorSeverity(status int) string {
	if status >= http.StatusInternalServerError {
		return "high"
	}
	return "medium"
}

// statusRecorder captures the response status and, when the handler
// reports one, the error that produced it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	cause  error
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
