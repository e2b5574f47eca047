package app

import (
	"errors"
	"fmt"
	"strings"
)

// Output formats accepted by Config.Format.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMermaid = "mermaid"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CatalogPaths []string // .hcl / .yaml files or directories
	StatePath    string   // optional state snapshot

	Keys        []string // requirements to report; all when empty
	Testing     []string // keys forced to Met
	Assignments []string // root.name=value changes applied after the build
	Strict      bool     // no zero defaults for signals missing from the state

	Format     string
	LogFormat  string
	LogLevel   string
	ListenPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.CatalogPaths) == 0 {
		return nil, errors.New("at least one catalog path is required")
	}

	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	cfg.Format = strings.ToLower(cfg.Format)
	switch cfg.Format {
	case FormatText, FormatJSON, FormatMermaid:
	default:
		return nil, fmt.Errorf("invalid format '%s': must be 'text', 'json' or 'mermaid'", cfg.Format)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format '%s': must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level '%s': must be 'debug', 'info', 'warn' or 'error'", cfg.LogLevel)
	}

	if cfg.ListenPort < 0 || cfg.ListenPort > 65535 {
		return nil, fmt.Errorf("invalid listen-port %d", cfg.ListenPort)
	}

	return &cfg, nil
}
