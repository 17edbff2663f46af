package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Default(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.JunkPatterns) == 0 {
		t.Error("expected default junk patterns")
	}
	if cfg.Scan.MaxDepth <= 0 {
		t.Error("expected positive default max depth")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	yaml := `
scan:
  max_depth: 64
  exclude:
    - "**/.git"
junk_patterns:
  - name: "test pattern"
    pattern: "**/test"
    safe: true
log:
  level: debug
  format: json
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.JunkPatterns) != 1 {
		t.Errorf("expected 1 pattern, got %d", len(cfg.JunkPatterns))
	}
	if cfg.JunkPatterns[0].Name != "test pattern" {
		t.Errorf("expected 'test pattern', got %s", cfg.JunkPatterns[0].Name)
	}
	if cfg.Scan.MaxDepth != 64 {
		t.Errorf("expected max depth 64, got %d", cfg.Scan.MaxDepth)
	}
	if len(cfg.Scan.Exclude) != 1 {
		t.Errorf("expected 1 exclude pattern, got %d", len(cfg.Scan.Exclude))
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	// Unset sections keep their defaults.
	if !cfg.History.Enabled {
		t.Error("expected history to stay enabled")
	}
}

func TestDefaultConfig_HasJunkPatterns(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.JunkPatterns) == 0 {
		t.Error("expected default junk patterns")
	}
	// Check for node_modules pattern
	found := false
	for _, p := range cfg.JunkPatterns {
		if p.Name == "node_modules" {
			found = true
			if p.Pattern != "**/node_modules" {
				t.Errorf("node_modules pattern = %s, want **/node_modules", p.Pattern)
			}
			if !p.Safe {
				t.Error("node_modules should be marked safe")
			}
			break
		}
	}
	if !found {
		t.Error("expected node_modules pattern in defaults")
	}
}

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]func(*Config){
		"zero depth":     func(c *Config) { c.Scan.MaxDepth = 0 },
		"bad exclude":    func(c *Config) { c.Scan.Exclude = []string{"[oops"} },
		"bad junk":       func(c *Config) { c.JunkPatterns = []JunkPattern{{Name: "x", Pattern: "[oops"}} },
		"unnamed junk":   func(c *Config) { c.JunkPatterns = []JunkPattern{{Pattern: "**/x"}} },
		"unknown format": func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range tests {
		cfg := DefaultConfig()
		mutate(cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v, expected defaults for non-existent file", err)
	}
	if len(cfg.JunkPatterns) == 0 {
		t.Error("expected default junk patterns for non-existent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
junk_patterns:
  - name: "test"
    pattern: [invalid
`
	if err := os.WriteFile(cfgPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("scan:\n  max_depth: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if path == "" {
		t.Error("DefaultPath() returned empty string")
	}
	if !filepath.IsAbs(path) {
		t.Errorf("DefaultPath() = %s, expected absolute path", path)
	}
}

func TestDataPath(t *testing.T) {
	path := DataPath()
	if path == "" {
		t.Error("DataPath() returned empty string")
	}
	if !filepath.IsAbs(path) {
		t.Errorf("DataPath() = %s, expected absolute path", path)
	}
}
