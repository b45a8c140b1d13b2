// Package config loads, defaults and validates the server configuration.
// Configuration is read from a TOML or JSON file, chosen by extension,
// and individual settings may be overridden by command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultAddress     = "127.0.0.1"
	DefaultPort        = 8080
	DefaultBaseDir     = "."
	DefaultThreads     = 4
	DefaultReadTimeout = "30s"
	DefaultMetricsAddr = ":9090"
)

// DefaultIndexFiles is the index probe order for directory requests.
var DefaultIndexFiles = []string{"index.html"}

// Config is the top-level configuration for the server.
type Config struct {
	Server  *ServerConfig  `json:"server,omitempty" toml:"server,omitempty"`
	Files   *FilesConfig   `json:"files,omitempty" toml:"files,omitempty"`
	Logging *LoggingConfig `json:"logging,omitempty" toml:"logging,omitempty"`
	Metrics *MetricsConfig `json:"metrics,omitempty" toml:"metrics,omitempty"`

	// Verbose prints a per-request table to stdout.
	Verbose *bool `json:"verbose,omitempty" toml:"verbose,omitempty"`
}

// ServerConfig holds listener and worker settings.
type ServerConfig struct {
	Address        string `json:"address,omitempty" toml:"address,omitempty" validate:"omitempty,ip|hostname"`
	Port           int    `json:"port,omitempty" toml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Threads        int    `json:"threads,omitempty" toml:"threads,omitempty" validate:"omitempty,min=1,max=1024"`
	MaxConnections int    `json:"max_connections,omitempty" toml:"max_connections,omitempty" validate:"min=0"`
	// ReadTimeout bounds how long a client may take to send its
	// request, e.g. "10s". Zero means no deadline.
	ReadTimeout string `json:"read_timeout,omitempty" toml:"read_timeout,omitempty" validate:"omitempty,duration"`
}

// FilesConfig controls what is served and how.
type FilesConfig struct {
	BaseDir    string   `json:"base_dir,omitempty" toml:"base_dir,omitempty"`
	ListDir    *bool    `json:"list_dir,omitempty" toml:"list_dir,omitempty"`
	IndexFiles []string `json:"index_files,omitempty" toml:"index_files,omitempty" validate:"dive,required"`
}

// LoggingConfig selects the logger's level, format and destination.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" toml:"level,omitempty" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `json:"format,omitempty" toml:"format,omitempty" validate:"omitempty,oneof=console json"`
	Output string `json:"output,omitempty" toml:"output,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool  `json:"enabled,omitempty" toml:"enabled,omitempty"`
	Address string `json:"address,omitempty" toml:"address,omitempty" validate:"omitempty,hostname_port"`
}

// Default returns a fully-populated configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in every unset field.
func (c *Config) ApplyDefaults() {
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Threads == 0 {
		c.Server.Threads = DefaultThreads
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Files == nil {
		c.Files = &FilesConfig{}
	}
	if c.Files.BaseDir == "" {
		c.Files.BaseDir = DefaultBaseDir
	}
	if c.Files.ListDir == nil {
		enabled := true
		c.Files.ListDir = &enabled
	}
	if len(c.Files.IndexFiles) == 0 {
		c.Files.IndexFiles = append([]string(nil), DefaultIndexFiles...)
	}
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
	if c.Metrics.Enabled == nil {
		enabled := false
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = DefaultMetricsAddr
	}
	if c.Verbose == nil {
		verbose := true
		c.Verbose = &verbose
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Load reads the file at path, parsing it as TOML or JSON by
// extension, applies defaults, resolves the base directory to an
// absolute path and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported extension %q (want .toml or .json)", ext)
	}

	return Finalize(cfg)
}

// Finalize applies defaults, canonicalizes paths and validates cfg.
// It is used both for loaded files and for flag-built configurations.
func Finalize(cfg *Config) (*Config, error) {
	cfg.ApplyDefaults()

	abs, err := filepath.Abs(cfg.Files.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolving base_dir: %w", err)
	}
	cfg.Files.BaseDir = abs

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
