package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   backend base URL
//	-d string   token database path
//	-t int      request timeout (seconds)
//	-i int      online check interval (seconds)
//	-r float    request rate limit (per second, 0 = off)
//	-l string   log level (debug, info, warn, error)
//
// Only these flags are taken from os.Args, see flagx.FilterArgs.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-i", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "backend base URL")
	fs.StringVar(&cfg.TokenDBPath, "d", cfg.TokenDBPath, "token database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.Float64Var(&cfg.RateLimit, "r", cfg.RateLimit, "request rate limit per second")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// sub-second values from a file or the environment survive unless the
	// flag is actually given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
