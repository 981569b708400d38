package metrics

import (
	"strings"
	"time"
)

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		status := categorizeStatus(statusCode)
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// categorizeStatus converts status code to category (2xx, 3xx, 4xx, 5xx)
func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// ShouldSkipEndpoint reports whether path is an ops endpoint excluded from
// HTTP metrics. Websocket upgrades are long-lived and skipped too.
func ShouldSkipEndpoint(path string) bool {
	switch {
	case strings.HasSuffix(path, "/metrics"),
		strings.HasSuffix(path, "/health"),
		strings.HasSuffix(path, "/ready"),
		strings.HasSuffix(path, "/ws"):
		return true
	case strings.Contains(path, "/swagger/"):
		return true
	}
	return false
}
