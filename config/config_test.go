package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"seppy/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Limits.MaxThreads != 4 {
		t.Errorf("expected MaxThreads=4, got %d", cfg.Limits.MaxThreads)
	}
	if cfg.Limits.MemoryLimitMB != 1024 {
		t.Errorf("expected MemoryLimitMB=1024, got %d", cfg.Limits.MemoryLimitMB)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if cfg.Report.Format != "md" {
		t.Errorf("expected report format md, got %s", cfg.Report.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "seppy.yaml")

	content := `
split:
  ignore_patterns: ["_*"]
limits:
  max_threads: 8
cache:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Limits.MaxThreads != 8 {
		t.Errorf("expected MaxThreads=8, got %d", cfg.Limits.MaxThreads)
	}
	if cfg.Cache.Enabled {
		t.Errorf("expected cache disabled")
	}
	if len(cfg.Split.IgnorePatterns) != 1 || cfg.Split.IgnorePatterns[0] != "_*" {
		t.Errorf("unexpected ignore patterns %v", cfg.Split.IgnorePatterns)
	}
	// untouched keys keep their defaults
	if cfg.Limits.MemoryLimitMB != 1024 {
		t.Errorf("expected MemoryLimitMB default, got %d", cfg.Limits.MemoryLimitMB)
	}
}

func TestLoad_ValidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "seppy.json")

	if err := os.WriteFile(configPath, []byte(`{"limits": {"memory_limit_mb": 2048}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MemoryLimitMB != 2048 {
		t.Errorf("expected MemoryLimitMB=2048, got %d", cfg.Limits.MemoryLimitMB)
	}
}

func TestLoad_BadExtension(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "seppy.toml")
	if err := os.WriteFile(configPath, []byte("x = 1"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	var cerr *domain.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "seppy.yaml")
	if err := os.WriteFile(configPath, []byte("limits: [oops"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	var cerr *domain.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "seppy.yaml")

	content := `
split:
  residual_module: leftovers
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Split.ResidualModule != "leftovers" {
		t.Errorf("expected residual module leftovers, got %s", cfg.Split.ResidualModule)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SEPPY_MAX_THREADS":   "2",
		"SEPPY_CACHE_ENABLED": "false",
		"SEPPY_LOG_LEVEL":     "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxThreads != 2 {
		t.Errorf("expected MaxThreads=2, got %d", cfg.Limits.MaxThreads)
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled from env")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}

	env["SEPPY_MAX_THREADS"] = "many"
	if err := DefaultConfig().ApplyEnv(lookup); err == nil {
		t.Error("expected error for non-numeric SEPPY_MAX_THREADS")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"limits.max_threads":     func(c *Config) { c.Limits.MaxThreads = 0 },
		"limits.memory_limit_mb": func(c *Config) { c.Limits.MemoryLimitMB = 100 },
		"report.format":          func(c *Config) { c.Report.Format = "html" },
		"logging.level":          func(c *Config) { c.Logging.Level = "loud" },
		"split.ignore_patterns":  func(c *Config) { c.Split.IgnorePatterns = []string{"[abc"} },
		"split.residual_module":  func(c *Config) { c.Split.ResidualModule = "" },
	}

	for field, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		err := cfg.Validate()
		var cerr *domain.ConfigError
		if !errors.As(err, &cerr) {
			t.Errorf("%s: expected ConfigError, got %v", field, err)
			continue
		}
		if cerr.Field != field {
			t.Errorf("expected field %s, got %s", field, cerr.Field)
		}
	}
}

func TestCacheDBPath(t *testing.T) {
	path := CacheDBPath("/home/user/.seppy_cache")
	expected := filepath.Join("/home/user/.seppy_cache", "cache.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seppy.yaml")

	cfg := DefaultConfig()
	cfg.Split.LocalPackages = []string{"myapp"}
	cfg.Limits.MaxThreads = 8
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Limits.MaxThreads != 8 {
		t.Errorf("expected max_threads 8, got %d", loaded.Limits.MaxThreads)
	}
	if len(loaded.Split.LocalPackages) != 1 || loaded.Split.LocalPackages[0] != "myapp" {
		t.Errorf("expected local_packages [myapp], got %v", loaded.Split.LocalPackages)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("saved config does not validate: %v", err)
	}
}
