// Package config loads runtime configuration for the guIA CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then GUIA_* environment
//     variables (see parseEnv).
//  3. Optional JSON file selected with -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags).
//
// Later sources override earlier ones.
//
// Supported flags
//
//	-a string   base URL of the guIA REST API
//	-d string   path to the local session database ("" keeps the session in memory)
//	-t int      per-request timeout (seconds)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "5s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://api.guia.example/api/v1/",
//	  "request_timeout": "30s",
//	  "session_db": "/home/me/.guia/session.db",
//	  "log_level": "info",
//	  "bootstrap_timeout": "10s",
//	  "toast_max_visible": 5,
//	  "s3": {"bucket": "guia-media", "region": "auto", "endpoint": "https://r2.example"}
//	}
package config
