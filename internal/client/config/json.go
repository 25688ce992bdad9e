package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// may be strings like "3s" or integer nanoseconds. Absent keys keep the
// current value.
type JsonConfig struct {
	ServerURL        string          `json:"server_url"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	RetryBaseDelay   *timex.Duration `json:"retry_base_delay"`
	RetryMultiplier  *float64        `json:"retry_multiplier"`
	RetryMaxDelay    *timex.Duration `json:"retry_max_delay"`
	RetryMaxAttempts *int            `json:"retry_max_attempts"`
	LogLevel         string          `json:"log_level"`
	DownloadDir      string          `json:"download_dir"`

	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig
	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.DownloadDir != "" {
		cfg.DownloadDir = jc.DownloadDir
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryBaseDelay != nil {
		cfg.RetryBaseDelay = jc.RetryBaseDelay.Duration
	}
	if jc.RetryMultiplier != nil {
		cfg.RetryMultiplier = *jc.RetryMultiplier
	}
	if jc.RetryMaxDelay != nil {
		cfg.RetryMaxDelay = jc.RetryMaxDelay.Duration
	}
	if jc.RetryMaxAttempts != nil {
		cfg.RetryMaxAttempts = *jc.RetryMaxAttempts
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}
