// Package config carries the server's runtime configuration: flags for
// what an operator toggles per run, environment for deployment-specific
// paths and secrets.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config is the resolved server configuration.
type Config struct {
	Debug bool
	Port  string

	// EnginePath is the UCI engine binary every session runs.
	EnginePath string

	// AllowedOrigin restricts WebSocket upgrades; empty allows any origin
	// (development only).
	AllowedOrigin string

	// APIKeys guard the /ws endpoint; empty disables auth (development
	// only).
	APIKeys []string
}

// Load resolves configuration from the given flags plus the environment.
// Call godotenv.Load beforehand if a .env file should participate.
func Load(debug bool, port string) (*Config, error) {
	enginePath := os.Getenv("ENGINE_PATH")
	if enginePath == "" {
		return nil, fmt.Errorf("ENGINE_PATH is required")
	}

	cfg := &Config{
		Debug:         debug,
		Port:          port,
		EnginePath:    enginePath,
		AllowedOrigin: os.Getenv("FRONTEND_PATH"),
	}

	if keys := os.Getenv("API_KEYS"); keys != "" {
		for _, key := range strings.Split(keys, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.APIKeys = append(cfg.APIKeys, key)
			}
		}
	}

	return cfg, nil
}
