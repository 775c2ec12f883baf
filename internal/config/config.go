// Package config handles loading and validating sentei configuration
// from files, environment variables, and CLI flag overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// EnrichConfig controls GitHub enrichment of stale-branch candidates.
type EnrichConfig struct {
	Enabled   bool `yaml:"enabled"`
	BatchSize int  `yaml:"batch_size"` // concurrent API calls per batch
	PauseMs   int  `yaml:"pause_ms"`   // backpressure pause between batches
}

// Config holds all sentei configuration.
type Config struct {
	StaleDays       int          `yaml:"stale_days"`
	VeryStaleDays   int          `yaml:"very_stale_days"`
	MinimumCommits  int          `yaml:"minimum_commits"`
	ExcludePatterns []string     `yaml:"exclude_patterns"`
	Remote          string       `yaml:"remote"`
	Workers         int          `yaml:"workers"` // parallel worker count for history reads
	Backups         bool         `yaml:"backups"`
	GithubToken     string       `yaml:"github_token"`
	Enrich          EnrichConfig `yaml:"enrich"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		StaleDays:       30,
		VeryStaleDays:   90,
		MinimumCommits:  1,
		ExcludePatterns: []string{"main", "master", "develop", "release/*"},
		Remote:          "origin",
		Workers:         min(4, runtime.NumCPU()),
		Backups:         true,
		Enrich: EnrichConfig{
			Enabled:   true,
			BatchSize: 5,
			PauseMs:   200,
		},
	}
}

// Load reads configuration from the config file and environment variables.
// Values are layered: defaults < config file < environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if err := loadFile(&cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)

	if cfg.StaleDays <= 0 {
		return cfg, fmt.Errorf("stale_days must be positive, got %d", cfg.StaleDays)
	}
	if cfg.VeryStaleDays < cfg.StaleDays {
		return cfg, fmt.Errorf("very_stale_days (%d) must be at least stale_days (%d)",
			cfg.VeryStaleDays, cfg.StaleDays)
	}
	if cfg.MinimumCommits < 1 {
		return cfg, fmt.Errorf("minimum_commits must be at least 1, got %d", cfg.MinimumCommits)
	}

	return cfg, nil
}

// configPath returns the path to the config file.
func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sentei", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sentei", "config.yaml")
}

func loadFile(cfg *Config) error {
	path := filepath.Clean(configPath())
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no config file is fine
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SENTEI_STALE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.StaleDays = days
		}
	}
	if v := os.Getenv("SENTEI_VERY_STALE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.VeryStaleDays = days
		}
	}
	if v := os.Getenv("SENTEI_MINIMUM_COMMITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinimumCommits = n
		}
	}
	if v := os.Getenv("SENTEI_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("SENTEI_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SENTEI_BACKUPS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Backups = b
		}
	}
	if v := os.Getenv("SENTEI_GITHUB_TOKEN"); v != "" {
		cfg.GithubToken = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" && cfg.GithubToken == "" {
		cfg.GithubToken = v
	}
	if v := os.Getenv("GH_TOKEN"); v != "" && cfg.GithubToken == "" {
		cfg.GithubToken = v
	}
	if v := os.Getenv("SENTEI_ENRICH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enrich.Enabled = b
		}
	}
	if v := os.Getenv("SENTEI_ENRICH_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Enrich.BatchSize = n
		}
	}
	if v := os.Getenv("SENTEI_ENRICH_PAUSE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Enrich.PauseMs = n
		}
	}
}

// ExpandHome replaces a leading ~/ in path with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
