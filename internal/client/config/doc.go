// Package config loads runtime configuration for the agentdeck CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. Environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # Environment
//
//	BACKEND_URL       backend API base address (default http://localhost:5000)
//	STORE_URL         remote store address; with STORE_KEY enables configured mode
//	STORE_KEY         remote store key
//	LOCAL_DB_PATH     local SQLite file (default agentdeck.db)
//	REQUEST_TIMEOUT   backend request timeout (default 15s)
//	LOG_LEVEL         log level (default warn)
//
// # JSON schema
//
// Durations may be strings like "15s" or integer nanoseconds:
//
//	{
//	  "backend_url": "http://localhost:5000",
//	  "store_url": "postgres://db.example:5432/agentdeck",
//	  "store_key": "...",
//	  "request_timeout": "15s"
//	}
package config
