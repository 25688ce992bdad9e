// Package config handles configuration for the server component: defaults,
// a JSON overlay, environment variables and command-line flags, applied in
// that order so later sources win.
package config

import "time"

// Config holds runtime settings for the todokeeper API server.
//
// An empty DatabaseDSN runs the server on the in-memory store, which is what
// the tests and local demos use. An empty S3Bucket disables attachments.
type Config struct {
	EndpointAddrHTTP string `envconfig:"HTTP_ADDR"`
	DatabaseDSN      string `envconfig:"DATABASE_DSN"`
	SecretKey        string `envconfig:"SECRET_KEY"`
	LogLevel         string `envconfig:"LOG_LEVEL"`

	AccessTokenValidityDuration  time.Duration `envconfig:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `envconfig:"REFRESH_TOKEN_TTL"`

	// FrontendURL is the single origin allowed to call the API with credentials.
	FrontendURL    string `envconfig:"FRONTEND_URL"`
	CookieSecure   bool   `envconfig:"COOKIE_SECURE"`
	CookieSameSite string `envconfig:"COOKIE_SAMESITE"`
	CookieDomain   string `envconfig:"COOKIE_DOMAIN"`

	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL"`
	SweepRetention time.Duration `envconfig:"SWEEP_RETENTION"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`

	S3RootUser     string `envconfig:"S3_ROOT_USER"`
	S3RootPassword string `envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Region       string `envconfig:"S3_REGION"`
	S3BaseEndpoint string `envconfig:"S3_BASE_ENDPOINT"`
}

// LoadDefaults populates Config with development defaults.
// SecretKey in particular must be overridden outside of local runs, and
// CookieSecure must be enabled once the server sits behind https.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.LogLevel = "info"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.FrontendURL = "http://localhost:3000"
	c.CookieSecure = false
	c.CookieSameSite = "lax"
	c.CookieDomain = ""
	c.SweepInterval = time.Hour
	c.SweepRetention = 0
	c.ShutdownTimeout = 10 * time.Second
	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
}

// AttachmentsEnabled reports whether object storage is configured.
func (c *Config) AttachmentsEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config from defaults, then the optional JSON file,
// then TODOKEEPER_* environment variables, then command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
