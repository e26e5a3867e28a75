package aipsdk

import (
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/aipface/pkg/httpx"
)

const (
	// DefaultBaseURL is the Baidu AI platform endpoint.
	DefaultBaseURL = "https://aip.baidubce.com"

	// DefaultTimeout bounds every network call, token fetches included.
	DefaultTimeout = 60 * time.Second

	tokenPath = "/oauth/2.0/token"
)

// Option configures a Client or a TokenManager.
type Option func(*options)

type options struct {
	httpClient Doer
	timeout    time.Duration
	clock      Clock
	logger     *slog.Logger
	metrics    *Metrics
	baseURL    string
	tokenURL   string
	rateLimit  *httpx.RateLimitConfig
}

func defaultOptions() options {
	return options{
		timeout: DefaultTimeout,
		clock:   time.Now,
		logger:  slog.Default(),
		metrics: NewMetrics(nil),
		baseURL: DefaultBaseURL,
	}
}

// WithHTTPClient injects the transport. The Client does not close an
// injected transport; Close only releases a client the SDK created itself.
func WithHTTPClient(doer Doer) Option {
	return func(o *options) { o.httpClient = doer }
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger used for token and request events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the collectors updated by the SDK.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithBaseURL points the endpoints (and the token URL, unless set
// separately) at another host.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithTokenURL overrides the OAuth2 token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(o *options) { o.tokenURL = tokenURL }
}

// WithRateLimit throttles outgoing calls of the SDK-owned transport. It has
// no effect together with WithHTTPClient.
func WithRateLimit(cfg httpx.RateLimitConfig) Option {
	return func(o *options) { o.rateLimit = &cfg }
}
