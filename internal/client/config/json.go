package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/agentdeck/internal/flagx"
	"github.com/dmitrijs2005/agentdeck/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. RequestTimeout
// accepts "15s" or integer nanoseconds.
type JsonConfig struct {
	BackendURL     string         `json:"backend_url"`
	StoreURL       string         `json:"store_url"`
	StoreKey       string         `json:"store_key"`
	LocalDBPath    string         `json:"local_db_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current values. An unreadable or invalid file
// panics.
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

	setIf(&config.BackendURL, c.BackendURL)
	setIf(&config.StoreURL, c.StoreURL)
	setIf(&config.StoreKey, c.StoreKey)
	setIf(&config.LocalDBPath, c.LocalDBPath)
	setIf(&config.LogLevel, c.LogLevel)
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
