package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryBase = 10 * time.Millisecond
	cfg.RetryJitterMin = 0
	cfg.RetryJitterMax = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestFetcher(cfg Config, sleeper *sleepRecorder) *Fetcher {
	return New(cfg, WithSleeper(sleeper.sleep), WithRand(fixedRand{0}))
}

func TestFetchRetriesServerErrorThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	dest := filepath.Join(t.TempDir(), "r1")
	out := newTestFetcher(testConfig(), sleeper).Fetch(context.Background(), server.URL+"/bitstream/1", dest)

	if !out.Success {
		t.Fatalf("Fetch() failed: %s", out.Reason)
	}
	if out.FinalPath != dest+".pdf" || out.Size != int64(len("%PDF-1.4 body")) {
		t.Errorf("Fetch() = %+v", out)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if len(sleeper.waits) != 1 || sleeper.waits[0] != 10*time.Millisecond {
		t.Errorf("backoff waits = %v, want [10ms]", sleeper.waits)
	}
}

func TestFetchNotFoundIsTerminal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	dest := filepath.Join(t.TempDir(), "r1")
	out := newTestFetcher(testConfig(), sleeper).Fetch(context.Background(), server.URL+"/a.pdf", dest)

	if out.Success || out.Reason != "HTTP 404 Not Found" {
		t.Errorf("Fetch() = %+v, want HTTP 404 Not Found failure", out)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if len(sleeper.waits) != 0 {
		t.Errorf("terminal status must not back off, waited %v", sleeper.waits)
	}
	if _, err := os.Stat(dest + ".pdf"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no file expected on failure")
	}
}

func TestFetchEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	out := newTestFetcher(testConfig(), &sleepRecorder{}).Fetch(context.Background(), server.URL+"/doc", filepath.Join(dir, "r1"))

	if out.Success || out.Reason != ReasonEmptyBody {
		t.Errorf("Fetch() = %+v, want %q failure", out, ReasonEmptyBody)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("empty file left on disk: %v", entries)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	out := newTestFetcher(testConfig(), sleeper).Fetch(context.Background(), server.URL, filepath.Join(t.TempDir(), "r1"))

	if out.Success || out.Reason != "HTTP 429 Too Many Requests" {
		t.Errorf("Fetch() = %+v", out)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if !slices.Equal(sleeper.waits, want) {
		t.Errorf("waits = %v, want %v", sleeper.waits, want)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxAttempts = 1
	cfg.Timeout = 50 * time.Millisecond

	out := newTestFetcher(cfg, &sleepRecorder{}).Fetch(context.Background(), server.URL, filepath.Join(t.TempDir(), "r1"))
	if out.Success || out.Reason != ReasonTimeout {
		t.Errorf("Fetch() = %+v, want %q", out, ReasonTimeout)
	}
}

func TestFetchNetworkErrorRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	sleeper := &sleepRecorder{}
	out := newTestFetcher(testConfig(), sleeper).Fetch(context.Background(), url+"/a.pdf", filepath.Join(t.TempDir(), "r1"))

	if out.Success || out.Reason == "" {
		t.Errorf("Fetch() = %+v, want failure with error text", out)
	}
	if len(sleeper.waits) != 2 {
		t.Errorf("waits = %v, want 2 backoffs", sleeper.waits)
	}
}

func TestFetchRequestHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	out := newTestFetcher(testConfig(), &sleepRecorder{}).Fetch(context.Background(), server.URL+"/notes.txt", filepath.Join(t.TempDir(), "r1"))
	if !out.Success || !strings.HasSuffix(out.FinalPath, ".txt") {
		t.Fatalf("Fetch() = %+v", out)
	}

	if got.Get("Accept-Encoding") != "identity" {
		t.Errorf("Accept-Encoding = %q, want identity", got.Get("Accept-Encoding"))
	}
	if !slices.Contains(DefaultUserAgents, got.Get("User-Agent")) {
		t.Errorf("User-Agent %q not from the pool", got.Get("User-Agent"))
	}
	if got.Get("Referer") == "" || got.Get("Accept-Language") == "" {
		t.Errorf("browser headers missing: %v", got)
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out := newTestFetcher(testConfig(), &sleepRecorder{}).Fetch(context.Background(), server.URL+"/old", filepath.Join(t.TempDir(), "r1"))
	if !out.Success || !strings.HasSuffix(out.FinalPath, ".zip") {
		t.Errorf("Fetch() = %+v, want zip download after redirect", out)
	}
}

func TestFetchBreakerOpensForHost(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxAttempts = 1
	cfg.Breaker = BreakerConfig{Enabled: true, MinRequests: 1, FailureRatio: 1, OpenTimeout: time.Hour}
	f := newTestFetcher(cfg, &sleepRecorder{})

	first := f.Fetch(context.Background(), server.URL+"/a", filepath.Join(t.TempDir(), "a"))
	if first.Reason != "HTTP 503 Service Unavailable" {
		t.Fatalf("first Fetch() = %+v", first)
	}

	second := f.Fetch(context.Background(), server.URL+"/b", filepath.Join(t.TempDir(), "b"))
	if !strings.HasPrefix(second.Reason, "circuit open for host") {
		t.Errorf("second Fetch() = %+v, want circuit open", second)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestFetchBreakerIgnoresTerminalStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Breaker = BreakerConfig{Enabled: true, MinRequests: 1, FailureRatio: 1, OpenTimeout: time.Hour}
	f := newTestFetcher(cfg, &sleepRecorder{})

	for i := 0; i < 3; i++ {
		out := f.Fetch(context.Background(), server.URL, filepath.Join(t.TempDir(), "x"))
		if out.Reason != "HTTP 403 Forbidden" {
			t.Fatalf("Fetch() #%d = %+v, want 403 each time", i, out)
		}
	}
}
