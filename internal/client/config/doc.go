// Package config loads runtime configuration for the CodeForge CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c / -config, or CODEFORGE_CONFIG.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Every key is optional:
//
//	{
//	  "api_base_url": "https://judge.example.com/api",
//	  "request_timeout": "15s",
//	  "db_path": "codeforge.db",
//	  "draft_debounce": "250ms",
//	  "rate_limit": 5,
//	  "log_level": "debug"
//	}
package config
