// internal/sentiment/remote.go
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	apperrors "voice-assistant/internal/common/errors"
	httpclient "voice-assistant/internal/common/http"
	"voice-assistant/internal/common/logger"
)

type RemoteConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles on each later one.
	Backoff time.Duration
}

type polarityRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type polarityResponse struct {
	Polarity *float64 `json:"polarity"`
}

// RemoteScorer calls POST {BaseURL}/api/sentiment and reads {"polarity": float}.
type RemoteScorer struct {
	config RemoteConfig
	client *httpclient.Client
	logger logger.Logger
}

func NewRemoteScorer(cfg RemoteConfig, log logger.Logger) *RemoteScorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &RemoteScorer{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"scorer": "remote"}),
	}
}

// ScorePolarity returns a coded error: SENTIMENT_API_TIMEOUT when the deadline passes,
// SENTIMENT_SCORING_FAILED otherwise.
func (s *RemoteScorer) ScorePolarity(ctx context.Context, text string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	headers := map[string]string{}
	if s.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + s.config.APIKey
	}
	url := s.config.BaseURL + "/api/sentiment"

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.config.Backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, apperrors.NewSentimentAPITimeoutError(ctx.Err())
			}
		}

		var resp polarityResponse
		err := s.client.PostJSON(ctx, url, headers, polarityRequest{Text: text, Language: "fr"}, &resp)
		if err == nil {
			if resp.Polarity == nil || math.IsNaN(*resp.Polarity) {
				return 0, apperrors.NewSentimentScoringFailedError(errors.New("response has no polarity"))
			}
			return *resp.Polarity, nil
		}

		var netErr net.Error
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return 0, apperrors.NewSentimentAPITimeoutError(err)
		}

		lastErr = err
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			break
		}

		s.logger.Warn("sentiment API call failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return 0, apperrors.NewSentimentScoringFailedError(fmt.Errorf("after %d attempts: %w", s.config.MaxRetries+1, lastErr))
}
