package aipsdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/aussiebroadwan/aipface/pkg/bce"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock returns the current time. It is replaced in tests.
type Clock func() time.Time

// TokenManager owns the access token of one set of credentials. It fetches a
// token on first use, reuses it until SafetyMargin before expiry and replaces
// it wholesale on refresh.
//
// TokenManager is safe for concurrent use. Callers holding a valid token are
// never blocked by a refresh in progress.
type TokenManager struct {
	creds    bce.Credentials
	tokenURL string
	doer     Doer
	timeout  time.Duration
	clock    Clock
	logger   *slog.Logger
	metrics  *Metrics

	mu    sync.RWMutex
	token *Token

	// refreshSem is a one-slot semaphore serializing non-forced refreshes so
	// concurrent callers that find the token expired share one fetch. Waiters
	// give up when their context ends.
	refreshSem chan struct{}
}

// NewTokenManager creates a manager in the unset state. Nothing is fetched
// until EnsureValid is called.
func NewTokenManager(creds bce.Credentials, tokenURL string, doer Doer, opts ...Option) *TokenManager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newTokenManager(creds, tokenURL, doer, o)
}

func newTokenManager(creds bce.Credentials, tokenURL string, doer Doer, o options) *TokenManager {
	return &TokenManager{
		creds:      creds,
		tokenURL:   tokenURL,
		doer:       doer,
		timeout:    o.timeout,
		clock:      o.clock,
		logger:     o.logger,
		metrics:    o.metrics,
		refreshSem: make(chan struct{}, 1),
	}
}

// Current returns the cached token without checking its expiry, or nil when
// no token has been fetched yet. The returned Token must not be modified.
func (m *TokenManager) Current() *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Invalidate drops the cached token so the next EnsureValid fetches a new one.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()
}

// EnsureValid returns a usable token, fetching a new one when none is cached,
// the cached one is within SafetyMargin of expiry, or forceRefresh is set.
//
// A failed fetch returns an *AuthError and leaves the cached token untouched.
func (m *TokenManager) EnsureValid(ctx context.Context, forceRefresh bool) (*Token, error) {
	if !forceRefresh {
		if tok := m.validToken(); tok != nil {
			return tok, nil
		}

		select {
		case m.refreshSem <- struct{}{}:
			defer func() { <-m.refreshSem }()
		case <-ctx.Done():
			return nil, &AuthError{Err: newTransportError("token", m.tokenURL, ctx.Err())}
		}

		// Double-check after acquiring the refresh slot (another goroutine may have refreshed)
		if tok := m.validToken(); tok != nil {
			return tok, nil
		}
	}

	tok, err := m.fetch(ctx)
	if err != nil {
		m.metrics.TokenFetchesTotal.WithLabelValues("failure").Inc()
		m.logger.WarnContext(ctx, "token_fetch_failed", "error", err)
		return nil, err
	}
	m.metrics.TokenFetchesTotal.WithLabelValues("success").Inc()
	m.logger.DebugContext(ctx, "token_fetched", "expires_in", tok.ExpiresIn, "scope", tok.Scope)

	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()

	return tok, nil
}

func (m *TokenManager) validToken() *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token != nil && m.token.Valid(m.clock().Unix()) {
		return m.token
	}
	return nil
}

// fetch performs the client-credentials grant.
func (m *TokenManager) fetch(ctx context.Context) (*Token, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	u, err := url.Parse(m.tokenURL)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("invalid token url: %w", err)}
	}
	params := u.Query()
	params.Set("grant_type", "client_credentials")
	params.Set("client_id", m.creds.AccessKeyID)
	params.Set("client_secret", m.creds.SecretKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := m.doer.Do(req)
	if err != nil {
		return nil, &AuthError{Err: newTransportError("token", m.tokenURL, err)}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: newTransportError("token", m.tokenURL, err)}
	}

	if code, ok := body["error"].(string); ok && code != "" {
		desc, _ := body["error_description"].(string)
		return nil, &AuthError{StatusCode: resp.StatusCode, Code: code, Description: desc}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AuthError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeHTTPStatus,
			Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	tok, ok := tokenFromResponse(body, m.clock().Unix())
	if !ok {
		return nil, &AuthError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeInvalidResponse,
			Description: "token response has no access_token",
		}
	}

	return tok, nil
}
