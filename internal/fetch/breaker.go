package fetch

import (
	"log/slog"
	"net/url"

	"github.com/sony/gobreaker/v2"

	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/metrics"
)

func (f *Fetcher) breaker(host string) *gobreaker.CircuitBreaker[domain.Outcome] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.breakers[host]; ok {
		return b
	}

	cfg := f.cfg.Breaker
	settings := gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("Host circuit breaker state changed", "host", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	}

	b := gobreaker.NewCircuitBreaker[domain.Outcome](settings)
	f.breakers[host] = b
	return b
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
