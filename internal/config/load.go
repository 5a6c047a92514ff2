package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds a Config with priority defaults < file: it starts from
// Default() and, if path is non-empty, merges a YAML file over it.
// Grounded on avatar29A-midgard-ro/internal/config/load.go's
// defaults-then-file merge (the CLI-flag layer of that teacher file does
// not apply to a batch pipeline with no interactive settings, so it is
// dropped rather than adapted).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
