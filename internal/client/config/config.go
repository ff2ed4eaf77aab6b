package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CodeForge CLI.
//
// Fields:
//   - APIBaseURL: base of the REST API, e.g. http://127.0.0.1:8000/api.
//   - RequestTimeout: per-request HTTP timeout, also bounds a token refresh.
//   - DBPath: SQLite file holding tokens, the cached user, drafts and UI prefs.
//   - DraftDebounce: idle time before an edited draft is persisted.
//   - RateLimit: outbound requests per second; 0 disables limiting.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DBPath         string
	DraftDebounce  time.Duration
	RateLimit      int
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.RequestTimeout = 15 * time.Second
	c.DBPath = "codeforge.db"
	c.DraftDebounce = 250 * time.Millisecond
	c.RateLimit = 0
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
