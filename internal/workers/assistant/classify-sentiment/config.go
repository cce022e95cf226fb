// internal/workers/assistant/classify-sentiment/config.go
package classifysentiment

import (
	"time"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/config"
)

type Config struct {
	Enabled        bool
	Timeout        time.Duration
	MaxRetries     int
	PositiveCutoff float64
	NegativeCutoff float64
}

func LoadConfig() *Config {
	return &Config{
		Enabled:        true,
		Timeout:        5 * time.Second,
		MaxRetries:     3,
		PositiveCutoff: assistant.DefaultPositiveCutoff,
		NegativeCutoff: assistant.DefaultNegativeCutoff,
	}
}

// FromAppConfig maps the workers.classify-sentiment section and the assistant cutoffs.
func FromAppConfig(cfg *config.Config) *Config {
	out := LoadConfig()
	wc := config.GetWorkerConfig(cfg, TaskType)
	out.Enabled = wc.Enabled
	if wc.Timeout > 0 {
		out.Timeout = config.GetDuration(wc.Timeout)
	}
	if wc.MaxRetries > 0 {
		out.MaxRetries = wc.MaxRetries
	}
	out.PositiveCutoff = cfg.Assistant.PositiveCutoff
	out.NegativeCutoff = cfg.Assistant.NegativeCutoff
	return out
}
