package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
//	-a string   base URL of the server REST endpoint
//	-t int      request timeout (seconds)
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server URL")
	flagx.DurationVar(fs, &cfg.RequestTimeout, "t", time.Second, "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
