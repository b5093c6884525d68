package config

import "time"

// Config holds runtime settings for the agentdeck CLI.
//
// Fields:
//   - BackendURL: base address of the backend API.
//   - StoreURL / StoreKey: remote store address and key. Both must be set
//     for configured mode; otherwise the CLI runs in local mode.
//   - LocalDBPath: SQLite file holding the session token and cached
//     preferences.
//   - RequestTimeout: client-side timeout for every backend call.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BackendURL     string        `env:"BACKEND_URL"`
	StoreURL       string        `env:"STORE_URL"`
	StoreKey       string        `env:"STORE_KEY"`
	LocalDBPath    string        `env:"LOCAL_DB_PATH"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://localhost:5000"
	c.StoreURL = ""
	c.StoreKey = ""
	c.LocalDBPath = "agentdeck.db"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig builds a Config from defaults, then JSON, then environment,
// then flags. Later sources take precedence. Malformed input panics.
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
