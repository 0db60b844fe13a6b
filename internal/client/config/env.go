package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const envPrefix = "GUIA_"

// dotenvFiles are loaded before the environment is read. Variables already
// set in the process environment are never overwritten by them.
var dotenvFiles = []string{".env"}

// parseEnv overlays Config with GUIA_* environment variables, e.g.
// GUIA_API_URL, GUIA_REQUEST_TIMEOUT=45s, GUIA_S3_BUCKET. Unset variables
// leave the current value untouched. Panics on malformed values.
func parseEnv(cfg *Config) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
