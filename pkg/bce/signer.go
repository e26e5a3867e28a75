package bce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// AuthVersion is the protocol prefix of every authorization string.
	AuthVersion = "bce-auth-v1"

	// ExpirationSeconds is the validity window announced in the signature.
	ExpirationSeconds = "1800"

	// SignedHeaderNames lists the headers covered by the signature. Only Host
	// is ever signed.
	SignedHeaderNames = "host"

	// TimeFormat is the layout of the x-bce-date header and the signing timestamp.
	TimeFormat = "2006-01-02T15:04:05Z"
)

// Header names set on every signed request.
const (
	HeaderHost          = "Host"
	HeaderDate          = "x-bce-date"
	HeaderAccept        = "accept"
	HeaderAuthorization = "authorization"
)

// Credentials is the access key pair used to derive signing keys.
type Credentials struct {
	AccessKeyID string
	SecretKey   string
}

// SignedHeaders are the headers a signed request must carry.
type SignedHeaders struct {
	Host          string
	Date          string
	Accept        string
	Authorization string
}

// Map returns the headers keyed by their wire names.
func (h SignedHeaders) Map() map[string]string {
	return map[string]string{
		HeaderHost:          h.Host,
		HeaderDate:          h.Date,
		HeaderAccept:        h.Accept,
		HeaderAuthorization: h.Authorization,
	}
}

// CanonicalRequest is the string-to-sign broken into its parts.
type CanonicalRequest struct {
	Method           string
	URI              string
	QueryString      string
	CanonicalHeaders string
}

// String joins the parts with newlines in protocol order.
func (c CanonicalRequest) String() string {
	return c.Method + "\n" + c.URI + "\n" + c.QueryString + "\n" + c.CanonicalHeaders
}

// NewCanonicalRequest parses rawURL and builds its canonical form. The query
// of rawURL itself is ignored; params carries the query that will be sent.
func NewCanonicalRequest(method, rawURL string, params map[string]string) (CanonicalRequest, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CanonicalRequest{}, "", fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Host == "" {
		return CanonicalRequest{}, "", fmt.Errorf("url %q has no host", rawURL)
	}

	return CanonicalRequest{
		Method:           strings.ToUpper(method),
		URI:              Normalize(u.Path, false),
		QueryString:      CanonicalQueryString(params),
		CanonicalHeaders: "host:" + strings.TrimSpace(Normalize(u.Host, false)),
	}, u.Host, nil
}

// Sign computes the bce-auth-v1 authorization for a request issued at t.
// The result only depends on its inputs, so a fixed t yields a fixed signature.
func Sign(creds Credentials, method, rawURL string, params map[string]string, t time.Time) (SignedHeaders, error) {
	canonical, host, err := NewCanonicalRequest(method, rawURL, params)
	if err != nil {
		return SignedHeaders{}, err
	}

	timestamp := t.UTC().Format(TimeFormat)
	authPrefix := AuthVersion + "/" + creds.AccessKeyID + "/" + timestamp + "/" + ExpirationSeconds

	signingKey := hmacHex([]byte(creds.SecretKey), authPrefix)
	signature := hmacHex([]byte(signingKey), canonical.String())

	return SignedHeaders{
		Host:          host,
		Date:          timestamp,
		Accept:        "*/*",
		Authorization: authPrefix + "/" + SignedHeaderNames + "/" + signature,
	}, nil
}

// hmacHex returns the lowercase hex HMAC-SHA256 of msg.
func hmacHex(key []byte, msg string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
