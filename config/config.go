package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"seppy/internal/domain"
)

const (
	MinThreads       = 1
	MaxThreads       = 16
	MinMemoryLimitMB = 256
	MaxMemoryLimitMB = 8192
)

// Config holds all configuration for the splitter.
type Config struct {
	Split   SplitConfig   `yaml:"split" json:"split"`
	Input   InputConfig   `yaml:"input" json:"input"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Limits  LimitsConfig  `yaml:"limits" json:"limits"`
	Report  ReportConfig  `yaml:"report" json:"report"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SplitConfig controls how a source file is cut into modules.
type SplitConfig struct {
	IgnorePatterns  []string `yaml:"ignore_patterns" json:"ignore_patterns"` // globs over residual statement names
	LocalPackages   []string `yaml:"local_packages" json:"local_packages"`
	ModuleDocstring bool     `yaml:"module_docstring" json:"module_docstring"`
	ResidualModule  string   `yaml:"residual_module" json:"residual_module"`
	Verify          bool     `yaml:"verify" json:"verify"` // re-parse every emitted module
}

// InputConfig selects files when a directory is given.
type InputConfig struct {
	Includes []string `yaml:"includes" json:"includes"`
	Excludes []string `yaml:"excludes" json:"excludes"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

type LimitsConfig struct {
	MaxThreads    int `yaml:"max_threads" json:"max_threads"`
	MemoryLimitMB int `yaml:"memory_limit_mb" json:"memory_limit_mb"`
}

type ReportConfig struct {
	Format string `yaml:"format" json:"format"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // "text" or "json"
	File   string `yaml:"file" json:"file"`     // optional JSONL log file
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Split: SplitConfig{
			IgnorePatterns:  []string{},
			LocalPackages:   []string{},
			ModuleDocstring: true,
			ResidualModule:  "globals",
			Verify:          true,
		},
		Input: InputConfig{
			Includes: []string{"**/*.py"},
			Excludes: []string{"**/__pycache__/**", "**/.*/**", "**/*.pyc"},
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".seppy_cache",
		},
		Limits: LimitsConfig{
			MaxThreads:    4,
			MemoryLimitMB: 1024,
		},
		Report: ReportConfig{
			Format: "md",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML or JSON file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ConfigError{Msg: fmt.Sprintf("parsing JSON config %s: %v", path, err)}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ConfigError{Msg: fmt.Sprintf("parsing YAML config %s: %v", path, err)}
		}
	default:
		return nil, &domain.ConfigError{Msg: "config file must be .json or .yaml: " + path}
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for seppy.yaml).
func LoadFromDir(dir string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, "seppy.yaml"),
		filepath.Join(dir, "seppy.json"),
		filepath.Join(dir, ".seppy", "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return DefaultConfig(), nil
}

// ApplyEnv overrides fields from SEPPY_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("SEPPY_MAX_THREADS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigError{Field: "SEPPY_MAX_THREADS", Msg: err.Error()}
		}
		c.Limits.MaxThreads = n
	}
	if v, ok := lookup("SEPPY_MEMORY_LIMIT_MB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigError{Field: "SEPPY_MEMORY_LIMIT_MB", Msg: err.Error()}
		}
		c.Limits.MemoryLimitMB = n
	}
	if v, ok := lookup("SEPPY_CACHE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &domain.ConfigError{Field: "SEPPY_CACHE_ENABLED", Msg: err.Error()}
		}
		c.Cache.Enabled = b
	}
	if v, ok := lookup("SEPPY_CACHE_DIR"); ok {
		c.Cache.Dir = v
	}
	if v, ok := lookup("SEPPY_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("SEPPY_LOG_FILE"); ok {
		c.Logging.File = v
	}
	if v, ok := lookup("SEPPY_REPORT_FORMAT"); ok {
		c.Report.Format = v
	}
	return nil
}

// Validate checks ranges and enumerations. The first problem found is
// returned as a *domain.ConfigError.
func (c *Config) Validate() error {
	if c.Limits.MaxThreads < MinThreads || c.Limits.MaxThreads > MaxThreads {
		return &domain.ConfigError{
			Field: "limits.max_threads",
			Msg:   fmt.Sprintf("%d not in [%d, %d]", c.Limits.MaxThreads, MinThreads, MaxThreads),
		}
	}
	if c.Limits.MemoryLimitMB < MinMemoryLimitMB || c.Limits.MemoryLimitMB > MaxMemoryLimitMB {
		return &domain.ConfigError{
			Field: "limits.memory_limit_mb",
			Msg:   fmt.Sprintf("%d not in [%d, %d]", c.Limits.MemoryLimitMB, MinMemoryLimitMB, MaxMemoryLimitMB),
		}
	}
	if c.Report.Format != "md" {
		return &domain.ConfigError{Field: "report.format", Msg: fmt.Sprintf("unsupported format %q", c.Report.Format)}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &domain.ConfigError{Field: "logging.level", Msg: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &domain.ConfigError{Field: "logging.format", Msg: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return &domain.ConfigError{Field: "cache.dir", Msg: "must be set when the cache is enabled"}
	}
	if c.Split.ResidualModule == "" {
		return &domain.ConfigError{Field: "split.residual_module", Msg: "must not be empty"}
	}
	for _, group := range []struct {
		field    string
		patterns []string
	}{
		{"split.ignore_patterns", c.Split.IgnorePatterns},
		{"input.includes", c.Input.Includes},
		{"input.excludes", c.Input.Excludes},
	} {
		for _, p := range group.patterns {
			if !doublestar.ValidatePattern(p) {
				return &domain.ConfigError{Field: group.field, Msg: fmt.Sprintf("invalid pattern %q", p)}
			}
		}
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the path to the documentation cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, "cache.db")
}

// EnsureCacheDir ensures the cache directory exists.
func EnsureCacheDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
