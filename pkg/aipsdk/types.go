package aipsdk

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// Results
// ============================================================================

// Result is the decoded JSON body of an API call. Endpoint wrappers never
// return an error; a failed call yields a Result with a single "error" key.
type Result map[string]any

// errorKey is the key of a failed call's description.
const errorKey = "error"

// errorResult converts err into the uniform failure shape.
func errorResult(err error) Result {
	return Result{errorKey: err.Error()}
}

// Err returns the failure description when the call did not reach the API
// or the token could not be obtained.
func (r Result) Err() (string, bool) {
	msg, ok := r[errorKey].(string)
	return msg, ok
}

// Options holds optional request fields merged into an endpoint's payload.
type Options map[string]string

// buildPayload merges opts over the required fields. An option can change a
// required value but never blank it out.
func buildPayload(required map[string]string, opts Options) map[string]string {
	payload := make(map[string]string, len(required)+len(opts))
	for k, v := range required {
		payload[k] = v
	}
	for k, v := range opts {
		if _, isRequired := required[k]; isRequired && v == "" {
			continue
		}
		payload[k] = v
	}
	return payload
}

// ============================================================================
// Token
// ============================================================================

// SafetyMargin is subtracted from a token's lifetime so that requests in
// flight never carry a token that expires on the way.
const SafetyMargin = 30 * time.Second

// Token is an access token issued by the client-credentials grant. A Token is
// never modified after creation; a refresh replaces it with a new value.
type Token struct {
	// AccessToken is sent as the access_token query parameter
	AccessToken string

	// RefreshToken is returned by the endpoint but unused: a new grant is cheaper
	RefreshToken string

	// Scope is the space-delimited list of granted scopes
	Scope string

	// ExpiresIn is the lifetime in seconds
	ExpiresIn int64

	// IssuedAt is the unix time at which the token was received
	IssuedAt int64

	// Raw is the full token response plus a "time" field holding IssuedAt
	Raw map[string]any
}

// ExpiresAt returns the nominal expiry as unix seconds.
func (t *Token) ExpiresAt() int64 {
	return t.IssuedAt + t.ExpiresIn
}

// Valid reports whether the token can still be used at now (unix seconds).
func (t *Token) Valid(now int64) bool {
	return now < t.ExpiresAt()-int64(SafetyMargin/time.Second)
}

// HasScope returns true if the token was granted scope.
func (t *Token) HasScope(scope string) bool {
	for _, s := range strings.Fields(t.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// tokenFromResponse builds a Token from a decoded token response. It returns
// false when the body has no usable access_token.
func tokenFromResponse(body map[string]any, issuedAt int64) (*Token, bool) {
	accessToken, _ := body["access_token"].(string)
	if accessToken == "" {
		return nil, false
	}

	raw := make(map[string]any, len(body)+1)
	for k, v := range body {
		raw[k] = v
	}
	raw["time"] = issuedAt

	refreshToken, _ := body["refresh_token"].(string)
	scope, _ := body["scope"].(string)

	return &Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Scope:        scope,
		ExpiresIn:    asInt64(body["expires_in"]),
		IssuedAt:     issuedAt,
		Raw:          raw,
	}, true
}

// asInt64 reads a JSON number that may also arrive as a string.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(n)
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i
		}
	}
	return 0
}
