package aipsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	testAppID     = "app-id"
	testAPIKey    = "api-key"
	testSecretKey = "secret-key"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// logBuffer collects log output written from several goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeAIP emulates the token endpoint and the face API.
type fakeAIP struct {
	*httptest.Server

	tokenHits atomic.Int32

	mu          sync.Mutex
	tokenMethod string
	tokenQuery  url.Values
	tokenFunc   func(n int32) (int, any)
	apiFunc     http.HandlerFunc
}

func newFakeAIP(t *testing.T) *fakeAIP {
	t.Helper()

	f := &fakeAIP{
		tokenFunc: func(n int32) (int, any) {
			return http.StatusOK, map[string]any{
				"access_token":  fmt.Sprintf("24.token-%d", n),
				"refresh_token": fmt.Sprintf("25.refresh-%d", n),
				"expires_in":    3600,
				"scope":         "public brain_all_scope",
			}
		},
		apiFunc: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"result": "ok"})
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenHits.Add(1)
		f.mu.Lock()
		f.tokenMethod = r.Method
		f.tokenQuery = r.URL.Query()
		fn := f.tokenFunc
		f.mu.Unlock()

		status, body := fn(n)
		writeJSON(w, status, body)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fn := f.apiFunc
		f.mu.Unlock()
		fn(w, r)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)

	return f
}

func (f *fakeAIP) setToken(fn func(n int32) (int, any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenFunc = fn
}

func (f *fakeAIP) setAPI(fn http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiFunc = fn
}

func (f *fakeAIP) newClient(clock *fakeClock, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(f.URL),
		WithHTTPClient(f.Client()),
		WithClock(clock.Now),
		WithMetrics(NewMetrics(prometheus.NewRegistry())),
	}
	return New(testAppID, testAPIKey, testSecretKey, append(base, opts...)...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
