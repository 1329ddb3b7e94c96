// Package iofetch implements the rate-limited HTTP fetching primitive
// every upstream-facing component is built on. It owns retry/backoff
// and adaptive throttling; callers see either a response or a final
// error, never an in-flight retry.
package iofetch

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamedex/gdb/pkg/config"
	"golang.org/x/time/rate"
)

// Gate selects which upstream pacing regime a request falls under.
type Gate int

const (
	// GateQuery serializes requests through the shared query-service
	// limiter: the upstream enforces one logical client identity, so
	// worker count never widens this path.
	GateQuery Gate = iota
	// GateAPI has no minimum interval but is concurrency-capped.
	GateAPI
)

// Request describes one upstream call.
type Request struct {
	URL    string
	Method string
	// Body is form-encoded for POST requests.
	Body url.Values
	Gate Gate
}

// Response is a completed upstream call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client is the rate-limited fetcher. Construct one per run with New;
// all components of the run share it, so the slow window and counters
// are process-wide without being ambient globals.
type Client struct {
	http      *http.Client
	userAgent string

	queryGate *rate.Limiter
	apiGate   chan struct{}

	maxRetries int
	maxWait    time.Duration
	cooldown   time.Duration

	// slow window: raised by a Retry-After response, throttles
	// subsequent unrelated requests until the deadline passes.
	mu        sync.Mutex
	slowUntil time.Time
	slowDelay time.Duration

	stats *Stats
}

// New creates a Client from the fetch configuration. The config must
// already be validated; an empty UserAgent here is a programming
// error.
func New(cfg *config.FetchConfig, jobs int, stats *Stats) *Client {
	if jobs < 1 {
		jobs = 1
	}
	interval := time.Duration(cfg.QueryIntervalMs) * time.Millisecond
	return &Client{
		http:       &http.Client{Timeout: 90 * time.Second},
		userAgent:  cfg.UserAgent,
		queryGate:  rate.NewLimiter(rate.Every(interval), 1),
		apiGate:    make(chan struct{}, jobs),
		maxRetries: cfg.MaxRetries,
		maxWait:    time.Duration(cfg.MaxWaitSec) * time.Second,
		cooldown:   time.Duration(cfg.CooldownSec) * time.Second,
		stats:      stats,
	}
}

// Stats returns the shared run counters.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Fetch performs one upstream call with pacing, retry and backoff.
// Retryable statuses (429, 5xx) and transport failures are retried
// with exponential backoff plus jitter, capped in wait and attempts.
// Non-retryable statuses fail immediately with the body captured for
// diagnostics.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.stats.AddRetry()
		}

		if err := c.waitSlowWindow(ctx); err != nil {
			return nil, err
		}
		release, err := c.waitGate(ctx, req.Gate)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, req)
		release()

		if err != nil {
			// Transport-level failure: retryable.
			lastErr = RequestError(req.URL, err)
			c.backoff(ctx, attempt, 0)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			c.stats.AddNetworkCall()
			return &resp.Response, nil

		case retryable(resp.StatusCode):
			retryAfter := resp.retryAfter
			if retryAfter > 0 {
				c.raiseSlowWindow(retryAfter)
			}
			lastErr = StatusError(req.URL, resp.StatusCode, resp.Body)
			slog.Warn("Retryable upstream status",
				"url", req.URL,
				"status", resp.StatusCode,
				"attempt", attempt+1,
				"retry_after", retryAfter,
			)
			c.backoff(ctx, attempt, retryAfter)
			continue

		default:
			c.stats.AddFailure()
			return nil, StatusError(req.URL, resp.StatusCode, resp.Body)
		}
	}

	c.stats.AddFailure()
	return nil, RetriesExhaustedError(req.URL, c.maxRetries, lastErr)
}

// do executes a single HTTP exchange.
func (c *Client) do(ctx context.Context, req Request) (*response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method == http.MethodPost && req.Body != nil {
		body = strings.NewReader(req.Body.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set(
			"Content-Type", "application/x-www-form-urlencoded")
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &response{
		Response: Response{
			StatusCode: httpResp.StatusCode,
			Body:       data,
		},
		retryAfter: parseRetryAfter(httpResp.Header.Get("Retry-After")),
	}, nil
}

type response struct {
	Response
	retryAfter time.Duration
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// waitGate applies the per-upstream pacing and returns a release
// function for the concurrency-capped gate.
func (c *Client) waitGate(
	ctx context.Context,
	gate Gate,
) (func(), error) {
	switch gate {
	case GateQuery:
		if err := c.queryGate.Wait(ctx); err != nil {
			return nil, err
		}
		return func() {}, nil
	default:
		select {
		case c.apiGate <- struct{}{}:
			return func() { <-c.apiGate }, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// raiseSlowWindow starts or extends the shared cooldown. Until the
// deadline passes, every request waits the Retry-After duration
// (capped at maxWait) before being issued. This is what makes the
// limiter adaptive rather than purely per-request.
func (c *Client) raiseSlowWindow(retryAfter time.Duration) {
	delay := retryAfter
	if delay > c.maxWait {
		delay = c.maxWait
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	// A window that already expired does not carry its delay over;
	// the check must happen before the deadline is extended.
	expired := now.After(c.slowUntil)
	until := now.Add(c.cooldown)
	if until.After(c.slowUntil) {
		c.slowUntil = until
	}
	if expired || delay > c.slowDelay {
		c.slowDelay = delay
	}
	slog.Info("Raised shared slow window",
		"until", c.slowUntil.Format(time.RFC3339),
		"delay", delay,
	)
}

func (c *Client) waitSlowWindow(ctx context.Context) error {
	c.mu.Lock()
	var wait time.Duration
	if time.Now().Before(c.slowUntil) {
		wait = c.slowDelay
	}
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return sleepCtx(ctx, wait)
}

// backoff sleeps the computed exponential wait with jitter; a positive
// retryAfter overrides the computation.
func (c *Client) backoff(
	ctx context.Context,
	attempt int,
	retryAfter time.Duration,
) {
	wait := retryAfter
	if wait <= 0 {
		base := time.Second * time.Duration(1<<uint(attempt))
		jitter := time.Duration(rand.Int63n(int64(time.Second)))
		wait = base + jitter
	}
	if wait > c.maxWait {
		wait = c.maxWait
	}
	_ = sleepCtx(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
