package sentiment

import (
	"fmt"
	"time"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/config"
	"voice-assistant/internal/common/database"
	"voice-assistant/internal/common/logger"
)

// New builds the scorer selected by cfg. redis may be nil when caching is disabled.
func New(cfg config.SentimentConfig, redis *database.RedisClient, log logger.Logger) (assistant.PolarityScorer, error) {
	var scorer assistant.PolarityScorer

	switch cfg.Provider {
	case "", config.SentimentProviderLexicon:
		scorer = NewLexiconScorer(nil)
	case config.SentimentProviderRemote:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("remote sentiment provider requires a base URL")
		}
		scorer = NewRemoteScorer(RemoteConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Timeout:    config.GetDuration(cfg.Timeout),
			MaxRetries: cfg.MaxRetries,
		}, log)
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.Provider)
	}

	if cfg.Cache.Enabled {
		if redis == nil {
			return nil, fmt.Errorf("sentiment cache enabled without a redis client")
		}
		scorer = NewCachedScorer(scorer, redis, time.Duration(cfg.Cache.TTL)*time.Second, log)
	}

	return scorer, nil
}
