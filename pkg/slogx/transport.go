package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport logs every outgoing request with a request id. Only the path is
// logged; query strings carry access tokens.
type Transport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

// NewTransport wraps base. A nil base uses http.DefaultTransport, a nil
// logger the context logger of each request.
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx, reqID := WithRequestID(r.Context())

	logger := FromContext(ctx)
	if t.logger != nil {
		logger = t.logger.With("req_id", reqID.String())
	}
	logger = logger.With(
		"method", r.Method,
		"host", r.URL.Host,
		"path", r.URL.Path,
	)

	resp, err := t.base.RoundTrip(r.WithContext(ctx))
	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("http_request_failed", "duration_ms", duration, "error", err)
		return nil, err
	}

	logger.Debug("http_request", "status", resp.StatusCode, "duration_ms", duration)
	return resp, nil
}

// CloseIdleConnections forwards to the wrapped transport.
func (t *Transport) CloseIdleConnections() {
	if ci, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}
