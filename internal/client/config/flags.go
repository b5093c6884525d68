package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/agentdeck/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string     backend API base address
//	-s string     remote store address
//	-k string     remote store key
//	-d string     local SQLite file
//	-t duration   request timeout (e.g. "15s")
//	-l string     log level
//
// Only the flags above are taken from os.Args; see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-s", "-k", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "backend API base address")
	fs.StringVar(&cfg.StoreURL, "s", cfg.StoreURL, "remote store address")
	fs.StringVar(&cfg.StoreKey, "k", cfg.StoreKey, "remote store key")
	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "local database file")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "backend request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
