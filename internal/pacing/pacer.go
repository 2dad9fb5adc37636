// Package pacing spaces outbound requests so a single remote host never sees
// bursts: a uniformly random pause before every row, and an optional global
// token bucket shared by every HTTP attempt.
package pacing

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Rand is the random source used for jitter.
type Rand interface {
	Int64N(n int64) int64
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type globalRand struct{}

func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// DefaultRand uses the process-wide math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// Sleep waits for d, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Between returns a duration uniformly distributed in [min, max].
func Between(r Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.Int64N(int64(max-min)+1))
}

// Pacer applies the per-row pause and the global request cap.
type Pacer struct {
	cfg     Config
	rand    Rand
	sleep   Sleeper
	limiter *rate.Limiter
}

// Option customises a Pacer.
type Option func(*Pacer)

// WithRand injects the jitter source.
func WithRand(r Rand) Option {
	return func(p *Pacer) { p.rand = r }
}

// WithSleeper injects the sleep function.
func WithSleeper(s Sleeper) Option {
	return func(p *Pacer) { p.sleep = s }
}

// NewPacer creates a pacer.
func NewPacer(cfg Config, opts ...Option) *Pacer {
	cfg = cfg.normalize()
	p := &Pacer{
		cfg:   cfg,
		rand:  DefaultRand,
		sleep: Sleep,
	}
	if cfg.RequestsPerMinute > 0 {
		every := time.Minute / time.Duration(cfg.RequestsPerMinute)
		p.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pause sleeps for a random duration in [MinDelay, MaxDelay] and returns it.
func (p *Pacer) Pause(ctx context.Context) (time.Duration, error) {
	d := Between(p.rand, p.cfg.MinDelay, p.cfg.MaxDelay)
	return d, p.sleep(ctx, d)
}

// Wait blocks until the global request cap admits one more request.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
