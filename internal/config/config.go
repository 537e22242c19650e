// Package config provides configuration types, loading and validation for
// rootwalk. Configuration comes from an optional JSON file (path given by
// flag or the ROOTWALK_CONFIG environment variable) with flag overrides
// applied by the command mains.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"time"
)

// ResolverConfig contains settings for the iterative resolver.
type ResolverConfig struct {
	// RootServer is the address the delegation walk starts from,
	// as HOST:PORT. Defaults to the a.root-servers.net address.
	RootServer string `json:"root_server"`
	// Timeout bounds each query/response exchange (e.g. "5s").
	Timeout string `json:"timeout"`
	// MaxDepth bounds recursive delegation chasing.
	MaxDepth int `json:"max_depth"`
	// ErrorPolicy is "strict" (a failed exchange aborts the resolution)
	// or "lenient" (only the failing branch is abandoned).
	ErrorPolicy string `json:"error_policy"`
}

// APIConfig contains settings for the management REST API.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	APIKey  string `json:"api_key,omitempty"`
	// RateQPS and RateBurst limit /resolve requests per client IP with a
	// token bucket. Zero or negative values disable the limit.
	RateQPS   float64 `json:"rate_qps"`
	RateBurst int     `json:"rate_burst"`
}

// HistoryConfig contains settings for the SQLite lookup journal.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level       string            `json:"level"`
	JSON        bool              `json:"json"`
	IncludePID  bool              `json:"include_pid"`
	ExtraFields map[string]string `json:"extra_fields,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Resolver ResolverConfig `json:"resolver"`
	API      APIConfig      `json:"api"`
	History  HistoryConfig  `json:"history"`
	Logging  LoggingConfig  `json:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			RootServer:  "198.41.0.4:53",
			Timeout:     "5s",
			MaxDepth:    3,
			ErrorPolicy: "strict",
		},
		API: APIConfig{
			Host:      "127.0.0.1",
			Port:      8053,
			RateQPS:   10,
			RateBurst: 20,
		},
		History: HistoryConfig{
			Path: "rootwalk-history.db",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// ResolveConfigPath returns the config path to use: the explicit flag value
// if set, otherwise the ROOTWALK_CONFIG environment variable, otherwise "".
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("ROOTWALK_CONFIG")
}

// Load reads a JSON config file over the defaults and validates the result.
// An empty path yields the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates and normalizes the configuration.
func (cfg *Config) Validate() error {
	if cfg.Resolver.RootServer == "" {
		cfg.Resolver.RootServer = "198.41.0.4:53"
	}
	if _, err := netip.ParseAddrPort(cfg.Resolver.RootServer); err != nil {
		return fmt.Errorf("resolver.root_server must be HOST:PORT: %w", err)
	}

	if cfg.Resolver.Timeout == "" {
		cfg.Resolver.Timeout = "5s"
	}
	if d, err := time.ParseDuration(cfg.Resolver.Timeout); err != nil || d <= 0 {
		return errors.New("resolver.timeout must be a positive duration")
	}

	if cfg.Resolver.MaxDepth <= 0 {
		cfg.Resolver.MaxDepth = 3
	}

	switch cfg.Resolver.ErrorPolicy {
	case "":
		cfg.Resolver.ErrorPolicy = "strict"
	case "strict", "lenient":
	default:
		return errors.New(`resolver.error_policy must be "strict" or "lenient"`)
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		return errors.New("history.path must be set when history is enabled")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	return nil
}

// RootAddrPort returns the parsed root server address. Call after Validate.
func (cfg *Config) RootAddrPort() netip.AddrPort {
	ap, _ := netip.ParseAddrPort(cfg.Resolver.RootServer)
	return ap
}

// TimeoutDuration returns the parsed exchange timeout. Call after Validate.
func (cfg *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(cfg.Resolver.Timeout)
	return d
}
