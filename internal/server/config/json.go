package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/agentdeck/internal/flagx"
	"github.com/dmitrijs2005/agentdeck/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file.
type JsonConfig struct {
	ListenAddr      string         `json:"listen_addr"`
	ForwardTarget   string         `json:"forward_target"`
	ForwardTimeout  timex.Duration `json:"forward_timeout"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	LogLevel        string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config. Missing keys keep their
// current values; a bad file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.ForwardTarget != "" {
		config.ForwardTarget = c.ForwardTarget
	}
	if c.ForwardTimeout.Duration != 0 {
		config.ForwardTimeout = c.ForwardTimeout.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
