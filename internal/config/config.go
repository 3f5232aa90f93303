// Package config defines the report client configuration and its loading layers.
package config

import (
	"time"
)

// Config contains process configuration shared by the dashboard server and the CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the dashboard listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the decision service root that serves /demo/run-ui and /run-ui.
	BaseURL string `koanf:"base_url"`

	// RequestTimeoutMS bounds one remote call. Zero leaves calls unbounded.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// DefaultSeed and DefaultRounds pre-fill the demo form.
	DefaultSeed   int `koanf:"default_seed"`
	DefaultRounds int `koanf:"default_rounds"`

	// LoadDemoOnStart fetches the seeded demo report when the server starts.
	LoadDemoOnStart bool `koanf:"load_demo_on_start"`

	// DiscardStale drops responses that arrive after a newer call was issued.
	DiscardStale bool `koanf:"discard_stale"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		BaseURL:         "http://127.0.0.1:8000",
		DefaultSeed:     42,
		DefaultRounds:   2,
		LoadDemoOnStart: true,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
