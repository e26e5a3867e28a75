package bce

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const identifyURL = "https://aip.baidubce.com/rest/2.0/face/v2/identify"

var fixedTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSignGoldenVector(t *testing.T) {
	t.Parallel()

	creds := Credentials{AccessKeyID: "ak", SecretKey: "sk"}

	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{
			name:   "no params",
			params: map[string]string{},
			want:   "bce-auth-v1/ak/2020-01-01T00:00:00Z/1800/host/65105fccbce6c4b184b8aa1c081f5f4f05092d0664a2042e70e03e6e1aba7f75",
		},
		{
			name: "sdk params",
			params: map[string]string{
				"aipSdk":       "go",
				"aipVersion":   "1.0.0",
				"access_token": "24.abc/def",
			},
			want: "bce-auth-v1/ak/2020-01-01T00:00:00Z/1800/host/cc7c38e7db210679eaff90bcc9b466c5959ca43ffac5f682f9afa333a4d53e7b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, err := Sign(creds, http.MethodPost, identifyURL, tt.params, fixedTime)
			require.NoError(t, err)
			require.Equal(t, tt.want, headers.Authorization)
			require.Equal(t, "aip.baidubce.com", headers.Host)
			require.Equal(t, "2020-01-01T00:00:00Z", headers.Date)
			require.Equal(t, "*/*", headers.Accept)
		})
	}
}

func TestSignDeterministic(t *testing.T) {
	t.Parallel()

	creds := Credentials{AccessKeyID: "ak", SecretKey: "sk"}
	params := map[string]string{"b": "2", "a": "1"}

	first, err := Sign(creds, "post", identifyURL, params, fixedTime)
	require.NoError(t, err)
	second, err := Sign(creds, http.MethodPost, identifyURL, params, fixedTime)
	require.NoError(t, err)
	require.Equal(t, first, second)

	later, err := Sign(creds, http.MethodPost, identifyURL, params, fixedTime.Add(time.Second))
	require.NoError(t, err)
	require.NotEqual(t, first.Authorization, later.Authorization)
}

func TestSignAuthorizationIgnored(t *testing.T) {
	t.Parallel()

	creds := Credentials{AccessKeyID: "ak", SecretKey: "sk"}

	plain, err := Sign(creds, http.MethodPost, identifyURL, nil, fixedTime)
	require.NoError(t, err)
	withAuth, err := Sign(creds, http.MethodPost, identifyURL, map[string]string{"Authorization": "x"}, fixedTime)
	require.NoError(t, err)
	require.Equal(t, plain.Authorization, withAuth.Authorization)
}

func TestSignTimestampIsUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CST", 8*60*60)
	headers, err := Sign(Credentials{AccessKeyID: "ak", SecretKey: "sk"}, http.MethodPost, identifyURL, nil, fixedTime.In(loc))
	require.NoError(t, err)
	require.Equal(t, "2020-01-01T00:00:00Z", headers.Date)
}

func TestNewCanonicalRequest(t *testing.T) {
	t.Parallel()

	t.Run("layout", func(t *testing.T) {
		cr, host, err := NewCanonicalRequest("post", identifyURL, map[string]string{"b": "2", "a": "1"})
		require.NoError(t, err)
		require.Equal(t, "aip.baidubce.com", host)
		require.Equal(t, "POST\n/rest/2.0/face/v2/identify\na=1&b=2\nhost:aip.baidubce.com", cr.String())
	})

	t.Run("port is encoded in canonical host", func(t *testing.T) {
		cr, host, err := NewCanonicalRequest("GET", "http://127.0.0.1:8080/a%20b", nil)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:8080", host)
		require.Equal(t, "host:127.0.0.1%3A8080", cr.CanonicalHeaders)
		require.Equal(t, "/a%20b", cr.URI)
	})

	t.Run("missing host", func(t *testing.T) {
		_, _, err := NewCanonicalRequest("GET", "/relative/path", nil)
		require.Error(t, err)
	})

	t.Run("unparsable", func(t *testing.T) {
		_, _, err := NewCanonicalRequest("GET", "://bad", nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse")
	})
}

func TestSignedHeadersMap(t *testing.T) {
	t.Parallel()

	h := SignedHeaders{Host: "h", Date: "d", Accept: "*/*", Authorization: "a"}
	require.Equal(t, map[string]string{
		"Host":          "h",
		"x-bce-date":    "d",
		"accept":        "*/*",
		"authorization": "a",
	}, h.Map())
}
