// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DBPath      string // empty means db.DefaultPath()
	DevMode     bool
	CORSOrigin  string
	PingMessage string
}

// Load reads an optional .env file and then builds a Config from the
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	port, err := strconv.Atoi(envOrDefault("EV_PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid EV_PORT %q", os.Getenv("EV_PORT"))
	}

	return Config{
		Port:        port,
		DBPath:      os.Getenv("EV_DB"),
		DevMode:     os.Getenv("EV_DEV_MODE") == "true",
		CORSOrigin:  envOrDefault("EV_CORS_ORIGIN", "*"),
		PingMessage: envOrDefault("PING_MESSAGE", "ping"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
