package httpx

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/aipface/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// DefaultLimit matches the QPS granted to a free face API application:
// 2 requests per second, no bursting beyond that.
// Override with: RATELIMIT_AIP_REQUESTS, RATELIMIT_AIP_WINDOW_SEC, RATELIMIT_AIP_BURST
var DefaultLimit = RateLimitConfig{
	RequestsPerWindow: 2,
	Window:            time.Second,
	Burst:             2,
}

func init() {
	DefaultLimit = ParseRateLimitFromEnv("AIP", DefaultLimit)
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: RATELIMIT_{prefix}_{field}
// For example: RATELIMIT_AIP_REQUESTS, RATELIMIT_AIP_WINDOW_SEC, RATELIMIT_AIP_BURST
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// Limit converts the window-based configuration into a per-second rate.
func (c RateLimitConfig) Limit() rate.Limit {
	if c.RequestsPerWindow <= 0 || c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// KeyExtractor groups outgoing requests that share a limiter.
type KeyExtractor func(*http.Request) string

// PathKeyExtractor gives every endpoint its own limiter. The face API
// enforces its QPS quota per endpoint.
func PathKeyExtractor(r *http.Request) string {
	return r.URL.Host + r.URL.Path
}

// RateLimitedTransport delays outgoing requests so that each key stays within
// its configured rate. A request whose context ends while waiting fails
// without being sent.
type RateLimitedTransport struct {
	base         http.RoundTripper
	config       RateLimitConfig
	keyExtractor KeyExtractor

	limiters sync.Map // map[string]*rate.Limiter
}

// NewRateLimitedTransport wraps base with per-endpoint limiting. A nil base
// uses http.DefaultTransport.
func NewRateLimitedTransport(base http.RoundTripper, config RateLimitConfig) *RateLimitedTransport {
	return NewRateLimitedTransportWithKey(base, config, PathKeyExtractor)
}

// NewRateLimitedTransportWithKey is like NewRateLimitedTransport with a custom grouping.
func NewRateLimitedTransportWithKey(base http.RoundTripper, config RateLimitConfig, keyExtractor KeyExtractor) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &RateLimitedTransport{
		base:         base,
		config:       config,
		keyExtractor: keyExtractor,
	}
}

// getLimiter retrieves or creates the limiter for the given key.
func (t *RateLimitedTransport) getLimiter(key string) *rate.Limiter {
	// Fast path: limiter already exists
	if limiter, ok := t.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(t.config.Limit(), t.config.Burst)
	actual, _ := t.limiters.LoadOrStore(key, limiter)
	return actual.(*rate.Limiter)
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	key := t.keyExtractor(r)

	start := time.Now()
	if err := t.getLimiter(key).Wait(ctx); err != nil {
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		slogx.FromContext(ctx).Debug("rate limit: request delayed",
			"key", key,
			"delay_ms", waited.Milliseconds(),
		)
	}

	return t.base.RoundTrip(r)
}

// CloseIdleConnections forwards to the wrapped transport so that
// http.Client.CloseIdleConnections reaches the connection pool.
func (t *RateLimitedTransport) CloseIdleConnections() {
	if ci, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}
