package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/fetch"
	"github.com/vietddude/harvester/internal/pacing"
)

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	cfg := &AppConfig{
		Catalog: CatalogConfig{
			ID:           "id",
			Title:        "dc.title",
			SourcePage:   "dc.identifier.uri",
			DownloadURL:  "BITSTREAM Download URL",
			License:      "BITSTREAM License",
			Category:     "License_Category",
			Reason:       "License_Reason",
			ResourceType: "dc.type",
			Authors:      "dc.contributor.author",
			Publisher:    []string{"dc.publisher", "publisher.name"},
			DOI:          "oapen.identifier.doi",
			ISBN:         []string{"dc.identifier.isbn", "BITSTREAM ISBN"},
			Language:     "dc.language",
		},
		Filter: FilterConfig{
			Input:    "repository-export.csv",
			Kept:     "repository-export-filtered.csv",
			Excluded: "repository-export-excluded.csv",
		},
		Output:     OutputConfig{BaseDir: "crawl_data"},
		Fetch:      fetch.DefaultConfig(),
		Pacing:     pacing.DefaultConfig(),
		Checkpoint: CheckpointConfig{Backend: BackendFile, FlushEvery: 1},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. Keys absent from the file keep
// their default values.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	cfg.Modes = nil
	cfg.Categories.Aliases = nil

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if len(cfg.Modes) == 0 {
		cfg.Modes = map[string]ModeConfig{
			"allowed": {
				Catalog:    "repository-export-allowed.csv",
				Categories: []domain.Category{domain.CategoryIncluded},
			},
			"ambiguous": {
				Catalog:    "repository-export-ambiguous.csv",
				Categories: []domain.Category{domain.CategoryAmbiguous},
			},
		}
	}
	if cfg.Categories.Aliases == nil {
		cfg.Categories.Aliases = make(map[string]domain.Category, len(domain.DefaultCategoryAliases))
		for k, v := range domain.DefaultCategoryAliases {
			cfg.Categories.Aliases[k] = v
		}
	}
	if cfg.Output.BaseDir == "" {
		cfg.Output.BaseDir = "crawl_data"
	}
	if cfg.Checkpoint.Backend == "" {
		cfg.Checkpoint.Backend = BackendFile
	}
	if cfg.Checkpoint.FlushEvery < 1 {
		cfg.Checkpoint.FlushEvery = 1
	}
	if cfg.Catalog.ID == "" {
		cfg.Catalog.ID = "id"
	}
}

// Validate checks settings that would otherwise fail mid-run.
func (c *AppConfig) Validate() error {
	switch c.Checkpoint.Backend {
	case BackendFile, BackendBolt, BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("checkpoint backend %q requires redis.url", BackendRedis)
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("checkpoint backend %q requires database.url", BackendPostgres)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Checkpoint.Backend)
	}

	for name, m := range c.Modes {
		if m.Catalog == "" {
			return fmt.Errorf("mode %q: catalog path is required", name)
		}
		if len(m.Categories) == 0 {
			return fmt.Errorf("mode %q: at least one category is required", name)
		}
	}
	return nil
}
