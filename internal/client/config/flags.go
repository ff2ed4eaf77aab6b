package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-db string  local database path
//	-r int      requests per second (0 = unlimited)
//	-l string   log level
//
// Unknown arguments are filtered out first so the config-file flags do not
// trip this flag set. Invalid values panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-db", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "local database path")
	fs.IntVar(&cfg.RateLimit, "r", cfg.RateLimit, "requests per second, 0 disables limiting")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
