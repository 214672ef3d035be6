package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// FileName is the project-local config file looked up in the working directory
const FileName = "mdsite.yaml"

// Config represents the mdsite configuration
type Config struct {
	ContentDir      string
	StaticDir       string
	OutputDir       string
	Template        string
	BasePath        string
	LogFile         string
	Interval        time.Duration
	Workers         int
	ExcludePatterns []string
	Clean           bool
}

// fileConfig is the on-disk shape; durations are stored as strings
type fileConfig struct {
	ContentDir      string   `yaml:"content_dir"`
	StaticDir       string   `yaml:"static_dir"`
	OutputDir       string   `yaml:"output_dir"`
	Template        string   `yaml:"template"`
	BasePath        string   `yaml:"base_path"`
	LogFile         string   `yaml:"log_file"`
	Interval        string   `yaml:"interval"`
	Workers         int      `yaml:"workers,omitempty"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
	Clean           *bool    `yaml:"clean,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		ContentDir:      "content",
		StaticDir:       "static",
		OutputDir:       "docs",
		Template:        "template.html",
		BasePath:        "/",
		LogFile:         DefaultLogFile(),
		Interval:        2 * time.Second,
		Workers:         runtime.NumCPU(),
		ExcludePatterns: []string{},
		Clean:           true,
	}
}

// ConfigPath returns the path to the config file. A mdsite.yaml in the
// working directory wins over the user config directory.
// Can be overridden for testing
var ConfigPath = func() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	return filepath.Join(xdg.ConfigHome, "mdsite", "config.yaml")
}

// StateFilePath returns the path to the build manifest
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "mdsite", "state.json")
}

// DefaultLogFile returns the default log location
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, "mdsite", "mdsite.log")
}

// Load reads the configuration, falling back to defaults when no config
// file exists
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.ExpandPaths()
		}
		return nil, err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if raw.ContentDir != "" {
		cfg.ContentDir = raw.ContentDir
	}
	if raw.StaticDir != "" {
		cfg.StaticDir = raw.StaticDir
	}
	if raw.OutputDir != "" {
		cfg.OutputDir = raw.OutputDir
	}
	if raw.Template != "" {
		cfg.Template = raw.Template
	}
	if raw.BasePath != "" {
		cfg.BasePath = raw.BasePath
	}
	if raw.LogFile != "" {
		cfg.LogFile = raw.LogFile
	}
	if raw.Interval != "" {
		interval, err := time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid interval format '%s': %w", raw.Interval, err)
		}
		cfg.Interval = interval
	}
	if raw.Workers != 0 {
		cfg.Workers = raw.Workers
	}
	if raw.ExcludePatterns != nil {
		cfg.ExcludePatterns = raw.ExcludePatterns
	}
	if raw.Clean != nil {
		cfg.Clean = *raw.Clean
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Expand paths
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to ConfigPath
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes configuration to configPath
func (c *Config) SaveTo(configPath string) error {
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	clean := c.Clean
	raw := fileConfig{
		ContentDir:      c.ContentDir,
		StaticDir:       c.StaticDir,
		OutputDir:       c.OutputDir,
		Template:        c.Template,
		BasePath:        c.BasePath,
		LogFile:         c.LogFile,
		Interval:        c.Interval.String(),
		Workers:         c.Workers,
		ExcludePatterns: c.ExcludePatterns,
		Clean:           &clean,
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir cannot be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if c.Template == "" {
		return fmt.Errorf("template cannot be empty")
	}
	if !strings.HasPrefix(c.BasePath, "/") || !strings.HasSuffix(c.BasePath, "/") {
		return fmt.Errorf("invalid base_path '%s': must start and end with '/'", c.BasePath)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	for _, pattern := range c.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern '%s'", pattern)
		}
	}

	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	for _, p := range []struct {
		name string
		path *string
	}{
		{"content_dir", &c.ContentDir},
		{"static_dir", &c.StaticDir},
		{"output_dir", &c.OutputDir},
		{"template", &c.Template},
		{"log_file", &c.LogFile},
	} {
		*p.path, err = expandPath(*p.path)
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", p.name, err)
		}
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}

// NormalizeBasePath adds the leading and trailing slash a base path needs,
// so "blog" and "/blog" both become "/blog/"
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}
