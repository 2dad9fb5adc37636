package fetch

import "time"

// Config defines download and retry behavior.
type Config struct {
	MaxAttempts    int           `yaml:"max_attempts"`     // default: 3
	RetryBase      time.Duration `yaml:"retry_base"`       // default: 10s, doubled per attempt
	RetryJitterMin time.Duration `yaml:"retry_jitter_min"` // default: 1s
	RetryJitterMax time.Duration `yaml:"retry_jitter_max"` // default: 5s
	Timeout        time.Duration `yaml:"timeout"`          // per attempt, default: 60s
	UserAgents     []string      `yaml:"user_agents"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig controls the optional per-host circuit breaker.
type BreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MinRequests  uint32        `yaml:"min_requests"`  // default: 5
	FailureRatio float64       `yaml:"failure_ratio"` // default: 0.8
	OpenTimeout  time.Duration `yaml:"open_timeout"`  // default: 10m
}

// DefaultUserAgents is the pool a User-Agent is drawn from for every attempt.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.89 Safari/537.36 Edg/118.0.2088.61",
}

// DefaultConfig provides the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		RetryBase:      10 * time.Second,
		RetryJitterMin: 1 * time.Second,
		RetryJitterMax: 5 * time.Second,
		Timeout:        60 * time.Second,
		UserAgents:     DefaultUserAgents,
		Breaker: BreakerConfig{
			MinRequests:  5,
			FailureRatio: 0.8,
			OpenTimeout:  10 * time.Minute,
		},
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.RetryBase < 0 {
		out.RetryBase = 0
	}
	if out.RetryJitterMin < 0 {
		out.RetryJitterMin = 0
	}
	if out.RetryJitterMax < out.RetryJitterMin {
		out.RetryJitterMax = out.RetryJitterMin
	}
	if out.Timeout <= 0 {
		out.Timeout = def.Timeout
	}
	if len(out.UserAgents) == 0 {
		out.UserAgents = def.UserAgents
	}
	if out.Breaker.MinRequests == 0 {
		out.Breaker.MinRequests = def.Breaker.MinRequests
	}
	if out.Breaker.FailureRatio <= 0 || out.Breaker.FailureRatio > 1 {
		out.Breaker.FailureRatio = def.Breaker.FailureRatio
	}
	if out.Breaker.OpenTimeout <= 0 {
		out.Breaker.OpenTimeout = def.Breaker.OpenTimeout
	}
	return out
}
