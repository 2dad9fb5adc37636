package pacing

import "time"

// Config holds inter-request pacing settings.
type Config struct {
	// Jittered pause before every row that performs network I/O.
	MinDelay time.Duration `yaml:"min_delay"` // default: 6s
	MaxDelay time.Duration `yaml:"max_delay"` // default: 15s

	// RequestsPerMinute caps every HTTP attempt, retries included, across the
	// whole process. 0 disables the cap.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// DefaultConfig returns the anti-bot pacing defaults.
func DefaultConfig() Config {
	return Config{
		MinDelay: 6 * time.Second,
		MaxDelay: 15 * time.Second,
	}
}

func (c Config) normalize() Config {
	out := c
	if out.MinDelay < 0 {
		out.MinDelay = 0
	}
	if out.MaxDelay < out.MinDelay {
		out.MaxDelay = out.MinDelay
	}
	if out.RequestsPerMinute < 0 {
		out.RequestsPerMinute = 0
	}
	return out
}
