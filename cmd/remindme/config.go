package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ksysoev/remindme-action/pkg/core"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".remindme.yaml"

// FileConfig represents the structure of .remindme.yaml
type FileConfig struct {
	// Directories skipped while walking, relative to the scanned root
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// first-colon or marker-colon
	PayloadAnchor string `yaml:"payload_anchor"`

	MaxConcurrency int `yaml:"max_concurrency"`
}

// loadFileConfig reads the configuration file at path. A missing file at the
// default location is not an error.
func loadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{
		ExcludeDirs: []string{".git", "node_modules", "vendor"},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigFile {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if _, err := core.ParsePayloadAnchor(cfg.PayloadAnchor); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	if cfg.MaxConcurrency < 0 {
		return nil, fmt.Errorf("invalid config file %s: max_concurrency must not be negative", path)
	}

	return cfg, nil
}

// scanOptions merges the file config with command line overrides.
func (c *FileConfig) scanOptions(anchor string, concurrency int) (core.ScanOptions, error) {
	if anchor == "" {
		anchor = c.PayloadAnchor
	}

	a, err := core.ParsePayloadAnchor(anchor)
	if err != nil {
		return core.ScanOptions{}, err
	}

	if concurrency <= 0 {
		concurrency = c.MaxConcurrency
	}

	return core.ScanOptions{PayloadAnchor: a, MaxConcurrency: concurrency}, nil
}
