package aipsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/aipface/pkg/bce"
)

// BuildRequest returns a signed POST request for rawURL carrying payload as
// a form body. It obtains a valid token first, so it may perform I/O.
//
// rawURL must be absolute and carry no query string: the query is reserved
// for the signed aipSdk, aipVersion and access_token parameters.
func (c *Client) BuildRequest(ctx context.Context, rawURL string, payload map[string]string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: "cannot be parsed"}
	}
	if u.Host == "" {
		return nil, &ValidationError{Field: "url", Message: "must be absolute"}
	}
	if u.RawQuery != "" || u.ForceQuery {
		return nil, &ValidationError{Field: "url", Message: "must not carry a query string"}
	}

	tok, err := c.tokens.EnsureValid(ctx, false)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"aipSdk":       SDKName,
		"aipVersion":   Version,
		"access_token": tok.AccessToken,
	}

	headers, err := bce.Sign(c.creds, http.MethodPost, rawURL, params, c.clock())
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: err.Error()}
	}

	query := make(url.Values, len(params))
	for k, v := range params {
		query.Set(k, v)
	}
	u.RawQuery = query.Encode()

	form := make(url.Values, len(payload))
	for k, v := range payload {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		u.String(),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, value := range headers.Map() {
		if name == bce.HeaderHost {
			// net/http sends Request.Host, not a Host header
			req.Host = value
			continue
		}
		req.Header.Set(name, value)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req, nil
}

// Call sends a signed request and decodes the JSON body. op names the
// operation in logs and metrics.
//
// Errors are typed: *AuthError when no token could be obtained,
// *TransportError when the request failed or timed out, *APIError when the
// API answered with an error. With an *APIError the decoded body is returned
// as well.
func (c *Client) Call(ctx context.Context, op, rawURL string, payload map[string]string) (Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.call(ctx, op, rawURL, payload)

	c.metrics.RequestLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	c.metrics.RequestsTotal.WithLabelValues(op, resultLabel(err)).Inc()

	return res, err
}

func (c *Client) call(ctx context.Context, op, rawURL string, payload map[string]string) (Result, error) {
	req, err := c.BuildRequest(ctx, rawURL, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, newTransportError(op, rawURL, err)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, newTransportError(op, rawURL, err)
	}

	if apiErr := apiErrorFrom(resp.StatusCode, body); apiErr != nil {
		if apiErr.invalidatesToken() {
			c.logger.InfoContext(ctx, "access_token_rejected", "operation", op, "error_code", apiErr.Code)
			c.tokens.Invalidate()
		}
		return body, apiErr
	}

	return body, nil
}

// invoke runs an endpoint call and folds failures into the uniform Result
// shape. API-level errors keep the body the API sent.
func (c *Client) invoke(ctx context.Context, op, path string, required map[string]string, opts Options) Result {
	res, err := c.Call(ctx, op, c.baseURL+path, buildPayload(required, opts))
	if err == nil {
		return res
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && res != nil {
		return res
	}

	c.logger.WarnContext(ctx, "face_request_failed", "operation", op, "error", err)
	return errorResult(err)
}

// decodeBody reads and closes the response body and decodes it as a JSON
// object. Numbers are kept as json.Number.
func decodeBody(resp *http.Response) (Result, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var body Result
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if body == nil {
		body = Result{}
	}

	return body, nil
}

func resultLabel(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "failure"
	}
}
