package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/fetch"
	natspub "github.com/vietddude/harvester/internal/infra/nats"
	redisclient "github.com/vietddude/harvester/internal/infra/redis"
	"github.com/vietddude/harvester/internal/infra/storage/postgres"
	"github.com/vietddude/harvester/internal/pacing"
)

var (
	ErrUnknownMode    = errors.New("unknown mode")
	ErrUnknownBackend = errors.New("unknown checkpoint backend")
)

// Checkpoint backends.
const (
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Catalog    CatalogConfig         `yaml:"catalog"`
	Modes      map[string]ModeConfig `yaml:"modes"`
	Categories CategoriesConfig      `yaml:"categories"`
	Filter     FilterConfig          `yaml:"filter"`
	Output     OutputConfig          `yaml:"output"`
	Fetch      fetch.Config          `yaml:"fetch"`
	Pacing     pacing.Config         `yaml:"pacing"`
	Checkpoint CheckpointConfig      `yaml:"checkpoint"`
	Redis      redisclient.Config    `yaml:"redis"`
	Database   postgres.Config       `yaml:"database"`
	NATS       natspub.Config        `yaml:"nats"`
	Metrics    MetricsConfig         `yaml:"metrics"`
	Inspect    InspectConfig         `yaml:"inspect"`
	Logging    LoggingConfig         `yaml:"logging"`
}

// CatalogConfig names the catalog columns. Lists are fallbacks tried in order.
type CatalogConfig struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	SourcePage   string   `yaml:"source_page"`
	DownloadURL  string   `yaml:"download_url"`
	License      string   `yaml:"license"`
	Category     string   `yaml:"category"`
	Reason       string   `yaml:"reason"`
	ResourceType string   `yaml:"resource_type"`
	Authors      string   `yaml:"authors"`
	Publisher    []string `yaml:"publisher"`
	DOI          string   `yaml:"doi"`
	ISBN         []string `yaml:"isbn"`
	Language     string   `yaml:"language"`
}

// ModeConfig is one output partition: a catalog and the categories it accepts.
type ModeConfig struct {
	Catalog    string            `yaml:"catalog"`
	Categories []domain.Category `yaml:"categories"`
}

// Accepts reports whether records of category c belong to this mode.
func (m ModeConfig) Accepts(c domain.Category) bool {
	for _, want := range m.Categories {
		if want == c {
			return true
		}
	}
	return false
}

// CategoriesConfig maps pre-computed category labels onto categories.
type CategoriesConfig struct {
	Aliases map[string]domain.Category `yaml:"aliases"`
}

// FilterConfig holds the catalog filter inputs and outputs.
type FilterConfig struct {
	Input    string `yaml:"input"`
	Kept     string `yaml:"kept"`
	Excluded string `yaml:"excluded"`
}

// OutputConfig holds the output root. Each mode writes under BaseDir/<mode>.
type OutputConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// CheckpointConfig selects and tunes the checkpoint backend.
type CheckpointConfig struct {
	Backend    string `yaml:"backend"`     // file, bolt, redis, postgres, memory
	FlushEvery int    `yaml:"flush_every"` // records per flush, default 1
}

// MetricsConfig holds the /metrics and /health server settings. Port 0 disables it.
type MetricsConfig struct {
	Port int `yaml:"port"`
}

// InspectConfig toggles post-download inspection.
type InspectConfig struct {
	PDF bool `yaml:"pdf"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Mode returns the named mode.
func (c *AppConfig) Mode(name string) (ModeConfig, error) {
	m, ok := c.Modes[name]
	if !ok {
		return ModeConfig{}, fmt.Errorf("%w %q (configured: %v)", ErrUnknownMode, name, c.ModeNames())
	}
	return m, nil
}

// ModeNames returns the configured mode names, sorted.
func (c *AppConfig) ModeNames() []string {
	names := make([]string, 0, len(c.Modes))
	for name := range c.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
