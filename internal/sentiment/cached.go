// internal/sentiment/cached.go
package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/database"
	"voice-assistant/internal/common/logger"
)

const cacheKeyPrefix = "sentiment:polarity:"

// CachedScorer memoizes another scorer's polarity in redis, keyed by a hash of the text.
// Redis failures are logged and bypassed; scorer failures are not cached.
type CachedScorer struct {
	inner  assistant.PolarityScorer
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedScorer(inner assistant.PolarityScorer, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedScorer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedScorer{
		inner:  inner,
		redis:  redis,
		ttl:    ttl,
		logger: log,
	}
}

func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (s *CachedScorer) ScorePolarity(ctx context.Context, text string) (float64, error) {
	key := CacheKey(text)

	cached, ok, err := s.redis.LoadFloat(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn("polarity cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	case ok:
		return cached, nil
	}

	p, err := s.inner.ScorePolarity(ctx, text)
	if err != nil {
		return 0, err
	}

	if err := s.redis.StoreFloat(ctx, key, p, s.ttl); err != nil {
		s.logger.Warn("polarity cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return p, nil
}
