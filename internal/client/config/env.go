package config

import (
	"github.com/caarlos0/env/v11"
)

const envPrefix = "CAMPUS_"

// parseEnv overlays Config with CAMPUS_* environment variables. Unset
// variables keep the current value. Malformed values panic, like the other loaders.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
