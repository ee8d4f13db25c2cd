// Package config provides configuration loading and structs for the henkan server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Convert ConvertConfig `yaml:"convert"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the session scratch space settings.
type StorageConfig struct {
	WorkDir           string `yaml:"work_dir"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	MaxUploadMB       int64  `yaml:"max_upload_mb"`
}

// ConvertConfig holds conversion behavior settings.
type ConvertConfig struct {
	PreviewRows int `yaml:"preview_rows"`
	// FallbackTextTable controls whether a PDF with no detectable tables
	// yields a single one-column table of its text lines. Defaults to true.
	FallbackTextTable *bool `yaml:"fallback_text_table"`
	// InferColumnTypes controls INTEGER/REAL/TEXT inference for SQLite
	// columns. Defaults to true; when false every column is TEXT.
	InferColumnTypes *bool `yaml:"infer_column_types"`
}

// FallbackTextTableOrDefault returns the fallback setting; defaults to true when unset.
func (c *ConvertConfig) FallbackTextTableOrDefault() bool {
	if c.FallbackTextTable != nil {
		return *c.FallbackTextTable
	}
	return true
}

// InferColumnTypesOrDefault returns the inference setting; defaults to true when unset.
func (c *ConvertConfig) InferColumnTypesOrDefault() bool {
	if c.InferColumnTypes != nil {
		return *c.InferColumnTypes
	}
	return true
}

// WatchConfig holds hot-folder settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	OutputDir   string   `yaml:"output_dir"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.WorkDir = expandPath(cfg.Storage.WorkDir, configDir)
	cfg.Watch.OutputDir = expandPath(cfg.Watch.OutputDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
