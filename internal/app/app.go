// Package app wires configuration into the responder and its collaborators. Every host
// (HTTP server, CLI, Zeebe workers) builds its dependencies through Build.
package app

import (
	"context"
	"fmt"
	"time"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/config"
	"voice-assistant/internal/common/database"
	apperrors "voice-assistant/internal/common/errors"
	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/sentiment"
	"voice-assistant/internal/speech"
)

type App struct {
	Config    *config.Config
	Logger    logger.Logger
	Redis     *database.RedisClient // nil unless the polarity cache is enabled
	Scorer    assistant.PolarityScorer
	Generator *assistant.Generator
	// Transcriber is nil unless speech is enabled.
	Transcriber speech.Transcriber

	closers []func() error
}

type Options struct {
	// RedisAttempts bounds the connection retries; zero means 5.
	RedisAttempts int
	RedisDelay    time.Duration
	// SkipSpeech leaves Transcriber nil even when speech is enabled.
	SkipSpeech bool
}

// Build creates the shared components. The caller owns the result and must Close it.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	a := &App{Config: cfg, Logger: log}

	if cfg.Sentiment.Cache.Enabled {
		redis, err := connectRedis(ctx, cfg.Database.Redis, opts, log)
		if err != nil {
			return nil, err
		}
		a.Redis = redis
		a.closers = append(a.closers, redis.Close)
	}

	scorer, err := sentiment.New(cfg.Sentiment, a.Redis, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build sentiment scorer: %w", err)
	}
	a.Scorer = scorer

	gen, err := assistant.NewGenerator(cfg.AssistantOptions(), scorer, log)
	if err != nil {
		a.Close()
		return nil, apperrors.NewCatalogInvalidError(err)
	}
	a.Generator = gen

	if cfg.Speech.Enabled && !opts.SkipSpeech {
		t, err := speech.NewGoogleTranscriber(ctx, speech.GoogleConfig{
			PrimaryLanguage:  cfg.Speech.PrimaryLanguage,
			FallbackLanguage: cfg.Speech.FallbackLanguage,
			SampleRate:       cfg.Speech.SampleRate,
			Timeout:          config.GetDuration(cfg.Speech.Timeout),
			CredentialsFile:  cfg.Speech.CredentialsFile,
		}, log)
		if err != nil {
			// Text input still works without speech.
			log.Warn("speech recognition disabled", map[string]interface{}{"error": err.Error()})
		} else {
			a.Transcriber = t
			a.closers = append(a.closers, t.Close)
		}
	}

	log.Info("responder ready", map[string]interface{}{
		"intents":   gen.Catalog().Len(),
		"sentiment": cfg.Sentiment.Provider,
		"cache":     a.Redis != nil,
		"speech":    a.Transcriber != nil,
	})
	return a, nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, opts Options, log logger.Logger) (*database.RedisClient, error) {
	attempts := opts.RedisAttempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := opts.RedisDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var redis *database.RedisClient
	err := retryWithBackoff(ctx, func() error {
		var err error
		redis, err = database.NewRedis(cfg)
		if err != nil {
			return err
		}
		if err := redis.Ping(ctx); err != nil {
			redis.Close()
			return err
		}
		return nil
	}, attempts, delay, log, "Redis connection")
	if err != nil {
		return nil, err
	}

	log.Info("Redis connected successfully", map[string]interface{}{"address": cfg.Address})
	return redis, nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
