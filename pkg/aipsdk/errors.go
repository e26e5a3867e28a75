package aipsdk

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	// ErrorCodeInvalidResponse is used when the token endpoint answers with a
	// body that cannot be used as a token.
	ErrorCodeInvalidResponse = "invalid_response"

	// ErrorCodeHTTPStatus is used when an endpoint answers with a non-2xx status
	// and no error code of its own.
	ErrorCodeHTTPStatus = "http_status"
)

// Business error codes after which the access token must not be reused.
const (
	apiCodeInvalidToken = 110
	apiCodeExpiredToken = 111
)

// ============================================================================
// TransportError
// ============================================================================

// TransportError wraps a failure to deliver a request or read its response:
// connection errors, cancellations and timeouts.
type TransportError struct {
	// Op is the logical operation, e.g. "identify" or "token"
	Op string

	// URL is the endpoint without its query string
	URL string

	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s %s: request timed out: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// newTransportError wraps err for op. The *url.Error added by http.Client is
// unwrapped because its message repeats the full request URL, query string
// included, and the query carries client_secret or access_token.
func newTransportError(op, endpoint string, err error) *TransportError {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return &TransportError{Op: op, URL: endpoint, Err: err}
}

// Timeout reports whether the failure was caused by the request deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ============================================================================
// AuthError
// ============================================================================

// AuthError is returned when an access token could not be obtained. It
// carries the OAuth2 error fields when the token endpoint provided them and
// the underlying cause otherwise.
type AuthError struct {
	// StatusCode is the HTTP status of the token response, 0 if none was received
	StatusCode int

	// Code is the OAuth2 error code (e.g. "invalid_client")
	Code string

	// Description is a human-readable description of the error
	Description string

	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	switch {
	case e.Err != nil && e.Code == "":
		return fmt.Sprintf("failed to obtain access token: %v", e.Err)
	case e.Description != "":
		return fmt.Sprintf("failed to obtain access token: %s: %s", e.Code, e.Description)
	default:
		return fmt.Sprintf("failed to obtain access token: %s", e.Code)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// ============================================================================
// ValidationError
// ============================================================================

// ValidationError reports an argument the SDK refuses to send.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ============================================================================
// APIError
// ============================================================================

// APIError is a failure reported by the face API itself, either through the
// error_code/error_msg fields of the body or through a non-2xx status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

// apiErrorFrom inspects a decoded body for the error_code/error_msg pair.
// Returns nil when the body does not describe an error.
func apiErrorFrom(statusCode int, body Result) *APIError {
	code, ok := body["error_code"]
	if ok && code != nil && fmt.Sprint(code) != "0" {
		msg, _ := body["error_msg"].(string)
		return &APIError{StatusCode: statusCode, Code: fmt.Sprint(code), Message: msg}
	}

	if statusCode < 200 || statusCode >= 300 {
		return &APIError{StatusCode: statusCode, Code: ErrorCodeHTTPStatus, Message: fmt.Sprintf("HTTP %d", statusCode)}
	}

	return nil
}

// invalidatesToken reports whether the API rejected the access token itself.
func (e *APIError) invalidatesToken() bool {
	return e.Code == fmt.Sprint(apiCodeInvalidToken) || e.Code == fmt.Sprint(apiCodeExpiredToken)
}
