// Package metrics emits bselens counters and histograms through the gofulmen
// telemetry system. Every function is a no-op until a system is installed.
package metrics

import (
	"strconv"
	"time"

	"github.com/bselens/bselens/internal/observability"
)

const (
	ExchangeRequestsTotal   = "exchange_requests_total"
	ExchangeRequestDuration = "exchange_request_duration_ms"
	ThrottleWaitsTotal      = "throttle_waits_total"
	ThrottleWaitDuration    = "throttle_wait_duration_ms"
	ScripCacheTotal         = "scrip_cache_lookups_total"
	ServerStartTime         = "app_server_start_time_seconds"
)

// RecordExchangeRequest records one upstream call. status is 0 when the
// request failed before a response arrived.
func RecordExchangeRequest(endpoint, bucket string, status int, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	labels := map[string]string{
		"endpoint": endpoint,
		"bucket":   bucket,
		"status":   strconv.Itoa(status),
	}
	_ = observability.TelemetrySystem.Counter(ExchangeRequestsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(ExchangeRequestDuration, duration, map[string]string{
		"endpoint": endpoint,
	})
}

// RecordThrottleWait records a throttle sleep for bucket.
func RecordThrottleWait(bucket string, wait time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	labels := map[string]string{"bucket": bucket}
	_ = observability.TelemetrySystem.Counter(ThrottleWaitsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(ThrottleWaitDuration, wait, labels)
}

// RecordScripCache records a scrip cache hit or miss.
func RecordScripCache(hit bool) {
	if observability.TelemetrySystem == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	_ = observability.TelemetrySystem.Counter(ScripCacheTotal, 1, map[string]string{"result": result})
}

// SetServerStartTime records the server start time as a Unix timestamp.
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
}
