package aipsdk

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/aipface/pkg/bce"
	"github.com/aussiebroadwan/aipface/pkg/httpx"
	"github.com/aussiebroadwan/aipface/pkg/slogx"
)

const (
	// SDKName is sent as the aipSdk query parameter.
	SDKName = "go"

	// Version is sent as the aipVersion query parameter.
	Version = "1.0.0"
)

// Client is a client for the Baidu face recognition API. It owns a
// TokenManager and signs every request with the application's credentials.
//
// Client is safe for concurrent use.
type Client struct {
	appID   string
	creds   bce.Credentials
	baseURL string
	timeout time.Duration
	clock   Clock
	logger  *slog.Logger
	metrics *Metrics

	injected  Doer
	rateLimit *httpx.RateLimitConfig

	mu    sync.Mutex
	owned *http.Client // created on first use, released by Close

	tokens *TokenManager
}

// New creates a client for the application identified by appID. apiKey and
// secretKey are used both for the client-credentials grant and for request
// signatures.
func New(appID, apiKey, secretKey string, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	tokenURL := o.tokenURL
	if tokenURL == "" {
		tokenURL = o.baseURL + tokenPath
	}

	c := &Client{
		appID:     appID,
		creds:     bce.Credentials{AccessKeyID: apiKey, SecretKey: secretKey},
		baseURL:   o.baseURL,
		timeout:   o.timeout,
		clock:     o.clock,
		logger:    o.logger.With("app_id", appID),
		metrics:   o.metrics,
		injected:  o.httpClient,
		rateLimit: o.rateLimit,
	}

	o.logger = c.logger
	c.tokens = newTokenManager(c.creds, tokenURL, c, o)

	return c
}

// AppID returns the application identifier the client was created with.
func (c *Client) AppID() string {
	return c.appID
}

// Tokens returns the client's token manager.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// Do sends req through the injected transport or, when none was given,
// through an SDK-owned *http.Client created on first use.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.transport().Do(req)
}

func (c *Client) transport() Doer {
	if c.injected != nil {
		return c.injected
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owned == nil {
		var rt http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
		if c.rateLimit != nil {
			rt = httpx.NewRateLimitedTransport(rt, *c.rateLimit)
		}
		c.owned = &http.Client{Transport: slogx.NewTransport(rt, c.logger)}
	}
	return c.owned
}

// Close releases the connections held by the SDK-owned transport. The client
// stays usable; a later call creates a fresh transport.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owned != nil {
		c.owned.CloseIdleConnections()
		c.owned = nil
	}
	return nil
}
