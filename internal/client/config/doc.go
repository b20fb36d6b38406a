// Package config loads runtime configuration for the gophtodo CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. GOPHTODO_* environment variables (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "request_timeout": "10s",
//	  "database_path": "gophtodo.db",
//	  "refresh_check_interval": "30s",
//	  "log_level": "info"
//	}
package config
