package integration

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bselens/bselens/internal/config"
	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/server"
	"github.com/bselens/bselens/internal/throttle"
)

const fragment = `<li><a href="#">Tata Consultancy Services Ltd<br>TCS&nbsp;&nbsp;&nbsp;INE467B01029<br>532540</a></li>`

// cleanupMetrics tears down global telemetry state so each test starts clean.
func cleanupMetrics(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if observability.PrometheusExporter != nil {
			_ = observability.PrometheusExporter.Stop()
			observability.PrometheusExporter = nil
		}
		observability.TelemetrySystem = nil
	})
}

// isPermissionError normalizes OS-specific permission errors so tests skip
// when loopback sockets are blocked.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{"permission denied", "operation not permitted", "not permitted"} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func initMetricsOrSkip(t *testing.T) {
	t.Helper()
	if err := observability.InitMetrics("itest", 0); err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping metrics tests due to sandbox permissions: %v", err)
		}
		require.NoError(t, err)
	}
	cleanupMetrics(t)
}

func listenOrSkip(t *testing.T) net.Listener {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping: %v", err)
		}
		require.NoError(t, err)
	}
	return listener
}

// newUpstream serves the peer search endpoint the way the exchange does.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	upstream := &httptest.Server{
		Listener: listenOrSkip(t),
		Config: &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/PeerSmartSearch/w" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(fragment))
		})},
	}
	upstream.Start()
	t.Cleanup(upstream.Close)
	return upstream
}

func newTestServer(t *testing.T, api *exchange.Client) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := server.New(config.ServerConfig{Host: "127.0.0.1"}, api, nil)

	ts := &httptest.Server{
		Listener: listenOrSkip(t),
		Config:   &http.Server{Handler: srv.Handler()},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts, ts.Client()
}

func TestMetricsEndpoint_Integration(t *testing.T) {
	observability.InitServerLogger("itest", "warn")
	initMetricsOrSkip(t)

	upstream := newUpstream(t)
	client := exchange.New(
		exchange.WithAPIURL(upstream.URL+"/api"),
		exchange.WithThrottle(throttle.New(throttle.Config{DefaultRate: 0})),
	)
	ts, httpClient := newTestServer(t, client)

	const numRequests = 40
	const numWorkers = 8

	paths := []string{"/v1/lookup?q=tcs", "/v1/scrips/532540/name", "/v1/symbols/TCS/code", "/health"}
	requests := make(chan string, numRequests)
	for i := 0; i < numRequests; i++ {
		requests <- paths[i%len(paths)]
	}
	close(requests)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for path := range requests {
				resp, err := httpClient.Get(ts.URL + path)
				if err == nil {
					_ = resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	resp, err := httpClient.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	content := string(body)
	assert.Contains(t, content, "itest_http_requests_total")
	assert.Contains(t, content, "itest_exchange_requests_total")
	assert.True(t, elapsed < 5*time.Second, "load test should complete in reasonable time")
}

func TestMetricsEndpoint_PrometheusFormat(t *testing.T) {
	observability.InitServerLogger("itest", "warn")
	initMetricsOrSkip(t)

	ts, httpClient := newTestServer(t, nil)

	resp, err := httpClient.Get(ts.URL + "/version")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = httpClient.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	contentType := resp.Header.Get("Content-Type")
	assert.True(t, strings.HasPrefix(contentType, "text/plain; version=0.0.4"),
		"expected Prometheus content type, got: %s", contentType)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)

	metricLines := 0
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		if !strings.HasPrefix(line, "#") && strings.TrimSpace(line) != "" {
			metricLines++
		}
	}
	assert.Greater(t, metricLines, 0, "should have metric values")
}

func TestMetricsEndpoint_WithTelemetryDisabled(t *testing.T) {
	observability.InitServerLogger("itest", "warn")

	originalExporter := observability.PrometheusExporter
	originalTelemetry := observability.TelemetrySystem
	observability.PrometheusExporter = nil
	observability.TelemetrySystem = nil
	t.Cleanup(func() {
		observability.PrometheusExporter = originalExporter
		observability.TelemetrySystem = originalTelemetry
	})

	ts, httpClient := newTestServer(t, nil)

	resp, err := httpClient.Get(ts.URL + "/health")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = httpClient.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
