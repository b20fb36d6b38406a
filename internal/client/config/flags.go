package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite file
//	-i int      token refresh check interval (seconds)
//	-l string   log level
//
// os.Args is filtered through flagx.FilterArgs first so that -c/-config and
// unknown flags do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database file")
	refreshInterval := fs.Int("i", int(cfg.RefreshCheckInterval.Seconds()), "token refresh check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.RefreshCheckInterval = time.Duration(*refreshInterval) * time.Second
}
