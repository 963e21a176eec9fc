// Package config loads the botpack-sync configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a configuration file layered over Default and validates the
// result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	file, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		file = nil
	} else if err != nil {
		return nil, err
	}

	cfg, err := Merge(Default(), file)
	if err != nil {
		return nil, err
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

// LoadFile parses a configuration file without applying defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d, only version 1 is supported", cfg.Version))
	}

	errs = append(errs, validatePack("botpack", cfg.Botpack)...)
	errs = append(errs, validatePack("mappack", cfg.Mappack)...)

	t := cfg.Tuning
	if t.MaxPatchGap == 0 {
		errs = append(errs, "tuning.max_patch_gap must be greater than 0")
	}
	if t.CompressionRatio <= 0 || t.CompressionRatio > 1 {
		errs = append(errs, fmt.Sprintf("tuning.compression_ratio %g must be in (0, 1]", t.CompressionRatio))
	}
	if t.SizeScale <= 0 {
		errs = append(errs, "tuning.size_scale must be greater than 0")
	}
	if t.FallbackSize <= 0 {
		errs = append(errs, "tuning.fallback_size must be greater than 0")
	}
	if t.ProgressInterval < 0 {
		errs = append(errs, "tuning.progress_interval must not be negative")
	}
	if t.PrefetchWindow < 0 {
		errs = append(errs, "tuning.prefetch_window must not be negative")
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, "request_timeout must not be negative")
	}
	if cfg.OnlineCheck.Timeout < 0 {
		errs = append(errs, "online_check.timeout must not be negative")
	}

	return errs
}

func validatePack(name string, p Pack) []string {
	var errs []string
	for _, f := range []struct{ key, val string }{
		{"owner", p.Owner},
		{"name", p.Name},
		{"branch", p.Branch},
		{"folder", p.Folder},
	} {
		if strings.TrimSpace(f.val) == "" {
			errs = append(errs, fmt.Sprintf("%s: '%s' is required", name, f.key))
		}
	}
	if strings.ContainsAny(p.Branch, `/\`) {
		errs = append(errs, fmt.Sprintf("%s: branch '%s' must not contain path separators", name, p.Branch))
	}
	return errs
}
