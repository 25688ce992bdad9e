// Package config loads runtime configuration for the todokeeper CLI.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. TODOKEEPER_CLI_* environment variables.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the API server
//	-i dur      per-request timeout (integer = seconds)
//	-n int      attempts per request for transient failures
//	-l string   log level
//	-o string   directory for downloaded attachments
package config

import "time"

type Config struct {
	ServerURL      string        `envconfig:"SERVER_URL"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`

	RetryBaseDelay   time.Duration `envconfig:"RETRY_BASE_DELAY"`
	RetryMultiplier  float64       `envconfig:"RETRY_MULTIPLIER"`
	RetryMaxDelay    time.Duration `envconfig:"RETRY_MAX_DELAY"`
	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS"`

	LogLevel    string `envconfig:"LOG_LEVEL"`
	DownloadDir string `envconfig:"DOWNLOAD_DIR"`

	// OnlineCheckInterval is how often the REPL pings /healthz to update
	// its online/offline status. Zero disables the watcher.
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.RetryBaseDelay = 200 * time.Millisecond
	c.RetryMultiplier = 2
	c.RetryMaxDelay = 5 * time.Second
	c.RetryMaxAttempts = 4
	c.LogLevel = "warn"
	c.DownloadDir = "."
	c.OnlineCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config from defaults, JSON, environment and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
