// Package fetch downloads one bitstream per call with bounded retries.
//
// Every attempt draws a random User-Agent, requests an uncompressed body so
// the on-disk size is the transferred size, follows redirects, and runs under
// its own timeout. Timeouts, network errors, 429 and 5xx responses are
// retried with exponential backoff plus jitter; any other non-2xx status and
// empty bodies are terminal.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/metrics"
	"github.com/vietddude/harvester/internal/pacing"
)

// Reasons produced by the fetcher itself.
const (
	ReasonEmptyBody = "0 bytes"
	ReasonTimeout   = "request timed out"
)

// Limiter gates every HTTP attempt.
type Limiter interface {
	Wait(ctx context.Context) error
}

type noLimit struct{}

func (noLimit) Wait(ctx context.Context) error { return ctx.Err() }

// Fetcher performs downloads.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	sleep   pacing.Sleeper
	rand    pacing.Rand
	limiter Limiter

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[domain.Outcome]
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithSleeper injects the backoff sleep.
func WithSleeper(s pacing.Sleeper) Option {
	return func(f *Fetcher) { f.sleep = s }
}

// WithRand injects the random source for jitter and User-Agent selection.
func WithRand(r pacing.Rand) Option {
	return func(f *Fetcher) { f.rand = r }
}

// WithLimiter gates every attempt, retries included.
func WithLimiter(l Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// New creates a fetcher.
func New(cfg Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		cfg: cfg.normalize(),
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DisableCompression:  true,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		sleep:    pacing.Sleep,
		rand:     pacing.DefaultRand,
		limiter:  noLimit{},
		breakers: make(map[string]*gobreaker.CircuitBreaker[domain.Outcome]),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL to destBase plus a resolved extension.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destBase string) domain.Outcome {
	if !f.cfg.Breaker.Enabled {
		out, _ := f.fetchWithRetry(ctx, rawURL, destBase)
		return out
	}

	host := hostOf(rawURL)
	out, err := f.breaker(host).Execute(func() (domain.Outcome, error) {
		return f.fetchWithRetry(ctx, rawURL, destBase)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Failed(fmt.Sprintf("circuit open for host %s", host))
	}
	return out
}

// errExhausted marks a sequence that ended on transient failures; the breaker
// counts it, terminal request errors are the remote's answer and do not trip.
var errExhausted = errors.New("retries exhausted")

func (f *Fetcher) fetchWithRetry(ctx context.Context, rawURL, destBase string) (domain.Outcome, error) {
	m := NewMachine(f.cfg.MaxAttempts, Backoff{
		Base:      f.cfg.RetryBase,
		JitterMin: f.cfg.RetryJitterMin,
		JitterMax: f.cfg.RetryJitterMax,
		Rand:      f.rand,
	})

	for {
		attempt := m.State().Attempt
		out, reason, action := f.attempt(ctx, rawURL, destBase)
		if reason == "" {
			m.Succeeded()
			metrics.FetchAttemptsTotal.WithLabelValues("ok").Inc()
			return out, nil
		}
		metrics.FetchAttemptsTotal.WithLabelValues(action.String()).Inc()

		if ctx.Err() != nil {
			return domain.Failed(ctx.Err().Error()), nil
		}

		wait, retry := m.Failed(reason, action)
		if !retry {
			st := m.State()
			if st.Exhausted {
				return domain.Failed(st.Reason), errExhausted
			}
			return domain.Failed(st.Reason), nil
		}

		slog.Warn("Download attempt failed, backing off",
			"url", rawURL,
			"attempt", attempt,
			"max_attempts", f.cfg.MaxAttempts,
			"wait", wait.Round(100*time.Millisecond),
			"reason", reason,
		)
		metrics.PacingSeconds.WithLabelValues("backoff").Add(wait.Seconds())
		if err := f.sleep(ctx, wait); err != nil {
			return domain.Failed(err.Error()), nil
		}
		m.Resume()
	}
}

// attempt performs one request. An empty reason means success.
func (f *Fetcher) attempt(ctx context.Context, rawURL, destBase string) (domain.Outcome, string, ErrorAction) {
	if err := f.limiter.Wait(ctx); err != nil {
		return domain.Outcome{}, err.Error(), ActionFatal
	}

	start := time.Now()
	defer func() { metrics.FetchLatency.Observe(time.Since(start).Seconds()) }()

	actx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.Outcome{}, fmt.Sprintf("invalid request: %v", err), ActionFatal
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Outcome{}, f.errorReason(ctx, actx, err), ActionRetry
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		reason := strings.TrimSpace(fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
		return domain.Outcome{}, reason, ClassifyStatus(resp.StatusCode)
	}

	finalPath := destBase + ResolveExt(rawURL, resp.Header.Get("Content-Type"))
	size, err := writeBody(finalPath, resp.Body)
	if err != nil {
		_ = os.Remove(finalPath)
		return domain.Outcome{}, f.errorReason(ctx, actx, err), ActionRetry
	}
	if size == 0 {
		_ = os.Remove(finalPath)
		return domain.Outcome{}, ReasonEmptyBody, ActionFatal
	}
	return domain.Succeeded(finalPath, size), "", ActionRetry
}

func (f *Fetcher) setHeaders(req *http.Request) {
	ua := f.cfg.UserAgents[int(f.rand.Int64N(int64(len(f.cfg.UserAgents))))]
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Referer", "https://www.google.com/")
}

// errorReason prefers a timeout message when the attempt deadline, not the
// caller, ended the request.
func (f *Fetcher) errorReason(parent, attempt context.Context, err error) string {
	if parent.Err() == nil && errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return err.Error()
}

// writeBody streams body to path and returns the size on disk.
func writeBody(path string, body io.Reader) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		return 0, fmt.Errorf("write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	return info.Size(), nil
}
