package config

import "github.com/kelseyhightower/envconfig"

const envconfigPrefix = "TODOKEEPER"

// parseEnv overlays TODOKEEPER_* variables. Unset variables leave the
// current value untouched. Malformed values panic, like the other loaders.
func parseEnv(config *Config) {
	if err := envconfig.Process(envconfigPrefix, config); err != nil {
		panic(err)
	}
}
