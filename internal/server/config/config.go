// Package config handles configuration for the relay server, including
// defaults, JSON overlay, environment variables and command-line flags.
package config

import "time"

// Config holds runtime settings for the relay server.
//
// Fields:
//   - ListenAddr: bind address for the HTTP listener.
//   - ForwardTarget: base address of the backend that validates tokens.
//   - ForwardTimeout: timeout for one forwarded request.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ListenAddr      string        `env:"LISTEN_ADDR"`
	ForwardTarget   string        `env:"FORWARD_TARGET"`
	ForwardTimeout  time.Duration `env:"FORWARD_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	LogLevel        string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":3000"
	c.ForwardTarget = "http://localhost:5000"
	c.ForwardTimeout = 10 * time.Second
	c.ShutdownTimeout = 5 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
