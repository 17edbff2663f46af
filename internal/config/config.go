package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const appName = "disk-analyzer"

var ErrInvalidConfig = errors.New("invalid configuration")

type JunkPattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Safe    bool   `yaml:"safe"`
}

type Scan struct {
	MaxDepth int      `yaml:"max_depth"`
	Exclude  []string `yaml:"exclude"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Config struct {
	Scan         Scan          `yaml:"scan"`
	JunkPatterns []JunkPattern `yaml:"junk_patterns"`
	Log          Log           `yaml:"log"`
	History      History       `yaml:"history"`
}

func DefaultConfig() *Config {
	return &Config{
		Scan: Scan{
			MaxDepth: 512,
		},
		JunkPatterns: []JunkPattern{
			{Name: "node_modules", Pattern: "**/node_modules", Safe: true},
			{Name: "JS build output", Pattern: "**/{dist,build,.next,.nuxt,out}", Safe: true},
			{Name: "C# build output", Pattern: "**/{bin,obj}", Safe: true},
			{Name: "Rust build output", Pattern: "**/target", Safe: true},
			{Name: "Package caches", Pattern: "**/{.npm/_cacache,.yarn/cache,.pnpm-store}", Safe: true},
			{Name: "Python cache", Pattern: "**/__pycache__", Safe: true},
			{Name: "Git repos", Pattern: "**/.git", Safe: false},
		},
		Log: Log{
			Level:  "warn",
			Format: "console",
		},
		History: History{
			Enabled: true,
			Path:    DataPath(),
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scan.MaxDepth <= 0 {
		return fmt.Errorf("%w: scan.max_depth must be positive, got %d", ErrInvalidConfig, c.Scan.MaxDepth)
	}
	for _, p := range c.Scan.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: scan.exclude pattern %q", ErrInvalidConfig, p)
		}
	}
	for _, jp := range c.JunkPatterns {
		if jp.Name == "" {
			return fmt.Errorf("%w: junk pattern %q has no name", ErrInvalidConfig, jp.Pattern)
		}
		if !doublestar.ValidatePattern(jp.Pattern) {
			return fmt.Errorf("%w: junk pattern %q", ErrInvalidConfig, jp.Pattern)
		}
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, "config.yaml")
}

func DataPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName, "history.db")
}
