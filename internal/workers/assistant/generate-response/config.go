// internal/workers/assistant/generate-response/config.go
package generateresponse

import (
	"time"

	"voice-assistant/internal/common/config"
)

type Config struct {
	Enabled    bool
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig() *Config {
	return &Config{
		Enabled:    true,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	}
}

// FromWorkerConfig maps the workers.generate-response section.
func FromWorkerConfig(wc config.WorkerConfig) *Config {
	cfg := LoadConfig()
	cfg.Enabled = wc.Enabled
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if wc.MaxRetries > 0 {
		cfg.MaxRetries = wc.MaxRetries
	}
	return cfg
}
