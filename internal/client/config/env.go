package config

import "github.com/kelseyhightower/envconfig"

const envconfigPrefix = "TODOKEEPER_CLI"

func parseEnv(cfg *Config) {
	if err := envconfig.Process(envconfigPrefix, cfg); err != nil {
		panic(err)
	}
}
