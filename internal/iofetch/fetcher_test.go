package iofetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gamedex/gdb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetchConfig() *config.FetchConfig {
	return &config.FetchConfig{
		UserAgent:       "gamedex-gdb/test (ops@example.com)",
		QueryIntervalMs: 1,
		MaxRetries:      2,
		MaxWaitSec:      1,
		CooldownSec:     1,
	}
}

func TestFetchSuccess(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAccept = r.Header.Get("Accept")
			w.Write([]byte(`{"ok":true}`))
		}))
	defer srv.Close()

	c := New(testFetchConfig(), 2, NewStats())
	resp, err := c.Fetch(context.Background(),
		Request{URL: srv.URL, Gate: GateAPI})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "gamedex-gdb/test (ops@example.com)", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, int64(1), c.Stats().NetworkCalls())
	assert.Equal(t, int64(0), c.Stats().Retries())
}

func TestFetchPostForm(t *testing.T) {
	var gotQuery, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotQuery = r.PostForm.Get("query")
			gotContentType = r.Header.Get("Content-Type")
			w.Write([]byte("{}"))
		}))
	defer srv.Close()

	c := New(testFetchConfig(), 1, NewStats())
	_, err := c.Fetch(context.Background(), Request{
		URL:    srv.URL,
		Method: http.MethodPost,
		Body:   url.Values{"query": {"SELECT ?item"}},
		Gate:   GateQuery,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT ?item", gotQuery)
	assert.Equal(t,
		"application/x-www-form-urlencoded", gotContentType)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping backoff test in short mode")
	}

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("{}"))
		}))
	defer srv.Close()

	stats := NewStats()
	c := New(testFetchConfig(), 1, stats)
	resp, err := c.Fetch(context.Background(),
		Request{URL: srv.URL, Gate: GateAPI})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(1), stats.Retries())
	assert.Equal(t, int64(0), stats.Failures())
}

func TestFetchNonRetryableStatus(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "no such page", http.StatusNotFound)
		}))
	defer srv.Close()

	stats := NewStats()
	c := New(testFetchConfig(), 1, stats)
	_, err := c.Fetch(context.Background(),
		Request{URL: srv.URL, Gate: GateAPI})
	require.Error(t, err)

	assert.Equal(t, int64(1), calls.Load(), "404 is not retried")
	assert.Equal(t, int64(1), stats.Failures())
}

func TestFetchRetriesExhausted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping backoff test in short mode")
	}

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
	defer srv.Close()

	cfg := testFetchConfig()
	stats := NewStats()
	c := New(cfg, 1, stats)
	_, err := c.Fetch(context.Background(),
		Request{URL: srv.URL, Gate: GateAPI})
	require.Error(t, err)

	assert.Equal(t, int64(cfg.MaxRetries+1), calls.Load())
	assert.Equal(t, int64(1), stats.Failures())
}

func TestFetchRetryAfterRaisesSlowWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping backoff test in short mode")
	}

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte("{}"))
		}))
	defer srv.Close()

	cfg := testFetchConfig()
	cfg.CooldownSec = 30
	c := New(cfg, 1, NewStats())
	_, err := c.Fetch(context.Background(),
		Request{URL: srv.URL, Gate: GateAPI})
	require.NoError(t, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.True(t, time.Now().Before(c.slowUntil),
		"slow window stays raised after the retried call")
	assert.Equal(t, time.Second, c.slowDelay)
}

func TestRaiseSlowWindow(t *testing.T) {
	t.Run("larger delay extends within an active window", func(t *testing.T) {
		c := New(testFetchConfig(), 1, NewStats())
		c.raiseSlowWindow(200 * time.Millisecond)
		c.raiseSlowWindow(600 * time.Millisecond)

		c.mu.Lock()
		defer c.mu.Unlock()
		assert.Equal(t, 600*time.Millisecond, c.slowDelay)
	})

	t.Run("smaller delay does not shrink an active window", func(t *testing.T) {
		c := New(testFetchConfig(), 1, NewStats())
		c.raiseSlowWindow(600 * time.Millisecond)
		c.raiseSlowWindow(200 * time.Millisecond)

		c.mu.Lock()
		defer c.mu.Unlock()
		assert.Equal(t, 600*time.Millisecond, c.slowDelay)
	})

	t.Run("expired window does not carry its delay over", func(t *testing.T) {
		c := New(testFetchConfig(), 1, NewStats())
		c.mu.Lock()
		c.slowUntil = time.Now().Add(-time.Minute)
		c.slowDelay = 900 * time.Millisecond
		c.mu.Unlock()

		c.raiseSlowWindow(200 * time.Millisecond)

		c.mu.Lock()
		defer c.mu.Unlock()
		assert.Equal(t, 200*time.Millisecond, c.slowDelay)
		assert.True(t, time.Now().Before(c.slowUntil))
	})

	t.Run("delay is capped at the configured maximum", func(t *testing.T) {
		cfg := testFetchConfig()
		cfg.MaxWaitSec = 1
		c := New(cfg, 1, NewStats())
		c.raiseSlowWindow(time.Hour)

		c.mu.Lock()
		defer c.mu.Unlock()
		assert.Equal(t, time.Second, c.slowDelay)
	})
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{}"))
		}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(testFetchConfig(), 1, NewStats())
	_, err := c.Fetch(ctx, Request{URL: srv.URL, Gate: GateQuery})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(http.StatusTooManyRequests))
	assert.True(t, retryable(http.StatusInternalServerError))
	assert.True(t, retryable(http.StatusBadGateway))
	assert.False(t, retryable(http.StatusNotFound))
	assert.False(t, retryable(http.StatusBadRequest))
	assert.False(t, retryable(http.StatusOK))
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"delta seconds", "30", 30 * time.Second},
		{"zero seconds", "0", 0},
		{"negative rejected", "-5", 0},
		{"garbage", "soon", 0},
		{"past http date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRetryAfter(tt.input))
		})
	}
}

func TestParseRetryAfterFutureDate(t *testing.T) {
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(future)
	assert.Greater(t, got, 5*time.Second)
	assert.LessOrEqual(t, got, 10*time.Second)
}
