// Package config loads runtime settings for the forno CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all settings the CLI commands read. Zero values fall
// back to the defaults below.
type Config struct {
	// BaseURL is where tool invocations are sent.
	BaseURL string `yaml:"base_url"`
	// DocumentURL is where the OpenAPI document is fetched from.
	// Empty means BaseURL + "/openapi.json".
	DocumentURL string `yaml:"document_url"`
	// ListenAddr is the bind address for the demo backend.
	ListenAddr string `yaml:"listen_addr"`
	// RedisAddr enables the Redis history store when non-empty.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	// ReceiptsDir is where order receipts are written.
	ReceiptsDir string `yaml:"receipts_dir"`
	// Timeout bounds each tool invocation.
	Timeout Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		BaseURL:     "http://localhost:8000",
		ListenAddr:  ":8000",
		ReceiptsDir: "orders",
		Timeout:     Duration(30 * time.Second),
		LogLevel:    "info",
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Duration(30 * time.Second)
	}
	return cfg, nil
}

// ResolvedDocumentURL returns the OpenAPI document location, deriving
// it from BaseURL when not set explicitly.
func (c Config) ResolvedDocumentURL() string {
	if c.DocumentURL != "" {
		return c.DocumentURL
	}
	return c.BaseURL + "/openapi.json"
}
