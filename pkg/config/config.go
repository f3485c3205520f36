// Package config loads scan settings.
//
// Settings come from three layers: built-in defaults, an optional YAML
// file named explicitly with --config, and command-line flags. Each layer
// overrides the one before it. There is no automatic file discovery.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"xasscan/pkg/core"
	"xasscan/pkg/extract"
	"xasscan/pkg/report"
)

// DefaultTimeout is the request timeout in seconds.
const DefaultTimeout = 10

// Default returns the built-in settings.
func Default() core.Config {
	return core.Config{
		Limit:   report.DefaultLimit,
		Timeout: DefaultTimeout,
		Delay:   extract.DefaultDelay,
	}
}

// Load reads a YAML settings file on top of the defaults. Unknown keys
// are rejected.
func Load(path string) (core.Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that cfg can drive a scan.
func Validate(cfg core.Config) error {
	if cfg.URL == "" {
		return errors.New("a target URL is required")
	}
	if cfg.Limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", cfg.Limit)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", cfg.Timeout)
	}
	if cfg.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", cfg.Delay)
	}
	return nil
}

// DefaultOutput returns the report path used when none is configured.
func DefaultOutput(now time.Time) string {
	return fmt.Sprintf("SecurityScan_Report_%s.xlsx", now.Format("2006-01-02_15-04"))
}
