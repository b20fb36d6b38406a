package config

import "time"

// Config holds runtime settings for the gophtodo CLI.
//
// Fields:
//   - APIBaseURL: base address of the to-do REST API, e.g. http://localhost:8000/api.
//   - RequestTimeout: fixed per-request timeout applied by the dispatcher.
//   - DatabasePath: SQLite file holding the persisted session token.
//   - RefreshCheckInterval: how often the client checks whether the token
//     is about to expire.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL           string
	RequestTimeout       time.Duration
	DatabasePath         string
	RefreshCheckInterval time.Duration
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "gophtodo.db"
	c.RefreshCheckInterval = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
