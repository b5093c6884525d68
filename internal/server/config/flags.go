package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/agentdeck/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     listen address (e.g. ":3000")
//	-f string     forward target (e.g. "http://localhost:5000")
//	-t duration   forward timeout
//	-l string     log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.ForwardTarget, "f", config.ForwardTarget, "backend address to forward to")
	fs.DurationVar(&config.ForwardTimeout, "t", config.ForwardTimeout, "forwarded request timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
