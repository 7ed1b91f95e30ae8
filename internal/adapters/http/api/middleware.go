// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/engagehq/pulse/pkg/metrics"
)

// MetricsMiddleware records request count, duration, and error class for
// one endpoint. Handlers stay plain http.HandlerFuncs; observability is
// layered here so route code never touches the metrics package.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		durationMs := float64(time.Since(start).Milliseconds())
		code := strconv.Itoa(sw.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, durationMs)

		if sw.status < http.StatusBadRequest {
			return
		}
		class := errorClass(sw.status)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, class)
		metrics.RecordErrorByType(class, errorSeverity(sw.status))
		metrics.RecordErrorLatency("http", class, durationMs)
	}
}

// errorClass buckets a failure status by how this API produces it: 404 is
// an unknown identity key, 409 a rejected concurrent refresh, anything
// else plain client or server fault.
func errorClass(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusConflict:
		return "run_conflict"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

// errorSeverity grades a failure status for alerting. Everything the
// caller can correct on their own is low.
func errorSeverity(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "high"
	case status == http.StatusConflict:
		return "medium"
	default:
		return "low"
	}
}

// statusWriter captures the status code a handler writes.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
