package pacing

import (
	"context"
	"testing"
	"time"
)

type fixedRand struct{ v int64 }

func (f fixedRand) Int64N(n int64) int64 {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

func TestBetween(t *testing.T) {
	tests := []struct {
		name     string
		rand     int64
		min, max time.Duration
		want     time.Duration
	}{
		{"lower bound", 0, 6 * time.Second, 15 * time.Second, 6 * time.Second},
		{"upper bound inclusive", 1 << 62, 6 * time.Second, 15 * time.Second, 15 * time.Second},
		{"mid", int64(time.Second), time.Second, 5 * time.Second, 2 * time.Second},
		{"degenerate", 42, 3 * time.Second, 3 * time.Second, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Between(fixedRand{tt.rand}, tt.min, tt.max); got != tt.want {
				t.Errorf("Between() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPacerPauseUsesInjectedSleeper(t *testing.T) {
	var slept []time.Duration
	p := NewPacer(Config{MinDelay: time.Second, MaxDelay: 2 * time.Second},
		WithRand(fixedRand{0}),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	d, err := p.Pause(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d != time.Second || len(slept) != 1 || slept[0] != time.Second {
		t.Errorf("Pause() = %v, slept %v, want 1s once", d, slept)
	}
}

func TestPacerWaitUnlimited(t *testing.T) {
	p := NewPacer(Config{})
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) > time.Second {
		t.Errorf("Wait() without cap must not block")
	}
}

func TestPacerWaitHonoursCancel(t *testing.T) {
	p := NewPacer(Config{RequestsPerMinute: 1})
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first request should pass the burst: %v", err)
	}
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Errorf("Wait() after cancel = nil, want error")
	}
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); err == nil {
		t.Errorf("Sleep() on cancelled ctx = nil, want error")
	}
}

func TestConfigNormalize(t *testing.T) {
	c := Config{MinDelay: 5 * time.Second, MaxDelay: time.Second, RequestsPerMinute: -3}.normalize()
	if c.MaxDelay != 5*time.Second || c.RequestsPerMinute != 0 {
		t.Errorf("normalize() = %+v", c)
	}
}
