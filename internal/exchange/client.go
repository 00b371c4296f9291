// Package exchange is a client for the exchange's public web API.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/bselens/bselens/internal/metrics"
	"github.com/bselens/bselens/internal/throttle"
)

const (
	DefaultBaseURL   = "https://www.bseindia.com/"
	DefaultAPIURL    = "https://api.bseindia.com/BseIndiaAPI/api"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:138.0) Gecko/20100101 Firefox/138.0"
	DefaultTimeout   = 10 * time.Second
)

// Record is one row of an exchange JSON table.
type Record map[string]any

// Payload is an undecoded exchange JSON object, usually holding Table keys.
type Payload map[string]any

// Client issues throttled requests against the exchange API.
type Client struct {
	http     *resty.Client
	throttle *throttle.Throttle
	cache    ScripCache
	cacheTTL time.Duration
	logger   *logging.Logger
	clock    func() time.Time

	baseURL   string
	apiURL    string
	userAgent string
	timeout   time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

// WithBaseURL overrides the public site URL used for Origin and Referer.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if v := strings.TrimSpace(baseURL); v != "" {
			c.baseURL = v
		}
	}
}

// WithAPIURL overrides the JSON API root.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		if v := strings.TrimRight(strings.TrimSpace(apiURL), "/"); v != "" {
			c.apiURL = v
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if v := strings.TrimSpace(ua); v != "" {
			c.userAgent = v
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithThrottle gates every request through t.
func WithThrottle(t *throttle.Throttle) Option {
	return func(c *Client) {
		c.throttle = t
	}
}

// WithScripCache consults cache before issuing lookup requests.
func WithScripCache(cache ScripCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithLogger enables debug request logging.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock replaces time.Now for default date ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.clock = now
	}
}

// New creates a client. Without WithThrottle the default bucket limits apply.
func New(opts ...Option) *Client {
	c := &Client{
		http:      resty.New(),
		baseURL:   DefaultBaseURL,
		apiURL:    DefaultAPIURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.throttle == nil {
		c.throttle = throttle.New(throttle.DefaultConfig())
	}

	c.http.SetTimeout(c.timeout)
	c.http.SetHeaders(map[string]string{
		"User-Agent":      c.userAgent,
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.5",
		"Origin":          c.baseURL,
		"Referer":         c.baseURL,
		"Connection":      "keep-alive",
	})
	return c
}

// Throttle exposes the throttle gating this client.
func (c *Client) Throttle() *throttle.Throttle {
	return c.throttle
}

func (c *Client) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now()
}

func (c *Client) endpointURL(endpoint string) string {
	return c.apiURL + "/" + endpoint + "/w"
}

// get performs a throttled GET against an API endpoint.
func (c *Client) get(ctx context.Context, bucket throttle.Bucket, endpoint string, params map[string]string) (*resty.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.throttle.Check(bucket)

	started := time.Now()
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(c.endpointURL(endpoint))
	if err != nil {
		metrics.RecordExchangeRequest(endpoint, string(bucket), 0, time.Since(started))
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w", endpoint, ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	elapsed := time.Since(started)
	metrics.RecordExchangeRequest(endpoint, string(bucket), resp.StatusCode(), elapsed)
	c.debug("exchange request",
		zap.String("endpoint", endpoint),
		zap.String("bucket", string(bucket)),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", elapsed))

	if resp.IsError() {
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
	}
	return resp, nil
}

// getJSON decodes the endpoint response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, params map[string]string, out any) error {
	resp, err := c.get(ctx, throttle.BucketDefault, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) debug(msg string, fields ...zap.Field) {
	if c.logger != nil {
		c.logger.Debug(msg, fields...)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ThrottleWaitHook logs and counts throttle sleeps. Pass it to
// throttle.WithWaitHook. logger may be nil.
func ThrottleWaitHook(logger *logging.Logger) throttle.WaitFunc {
	return func(bucket throttle.Bucket, wait time.Duration) {
		metrics.RecordThrottleWait(string(bucket), wait)
		if logger != nil {
			logger.Debug("throttle wait",
				zap.String("bucket", string(bucket)),
				zap.Duration("wait", wait))
		}
	}
}
