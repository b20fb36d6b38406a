package config

import (
	"os"
	"time"
)

const (
	EnvAPIBaseURL     = "GOPHTODO_API_BASE_URL"
	EnvRequestTimeout = "GOPHTODO_REQUEST_TIMEOUT"
	EnvDatabasePath   = "GOPHTODO_DATABASE"
	EnvLogLevel       = "GOPHTODO_LOG_LEVEL"
)

// parseEnv overlays Config with GOPHTODO_* environment variables.
// Empty variables are ignored; a malformed timeout panics like the other
// loaders do.
func parseEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
