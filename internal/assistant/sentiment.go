// internal/assistant/sentiment.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"

	"voice-assistant/internal/common/logger"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

const (
	DefaultPositiveCutoff = 0.3
	DefaultNegativeCutoff = -0.3
)

var errNonFinitePolarity = errors.New("polarity is not a finite number")

// PolarityScorer scores text polarity in [-1, 1].
type PolarityScorer interface {
	ScorePolarity(ctx context.Context, text string) (float64, error)
}

// PolarityScorerFunc adapts a function to PolarityScorer.
type PolarityScorerFunc func(ctx context.Context, text string) (float64, error)

func (f PolarityScorerFunc) ScorePolarity(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}

// SentimentClassifier discretizes scorer output. It never returns an error: any scorer
// failure classifies as neutral.
type SentimentClassifier struct {
	scorer         PolarityScorer
	positiveCutoff float64
	negativeCutoff float64
	logger         logger.Logger
}

func NewSentimentClassifier(scorer PolarityScorer, positiveCutoff, negativeCutoff float64, log logger.Logger) *SentimentClassifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SentimentClassifier{
		scorer:         scorer,
		positiveCutoff: positiveCutoff,
		negativeCutoff: negativeCutoff,
		logger:         log,
	}
}

func (c *SentimentClassifier) Classify(ctx context.Context, text string) Sentiment {
	s, _ := c.ClassifyWithPolarity(ctx, text)
	return s
}

// ClassifyWithPolarity also returns the polarity used; 0 when the scorer failed.
func (c *SentimentClassifier) ClassifyWithPolarity(ctx context.Context, text string) (Sentiment, float64) {
	polarity, err := c.score(ctx, text)
	if err != nil {
		c.logger.Warn("sentiment scoring failed, using neutral", map[string]interface{}{
			"error": err.Error(),
		})
		return SentimentNeutral, 0
	}

	return c.Label(polarity), polarity
}

// Label maps a polarity onto the configured cutoffs. Both cutoffs are exclusive.
func (c *SentimentClassifier) Label(polarity float64) Sentiment {
	switch {
	case polarity > c.positiveCutoff:
		return SentimentPositive
	case polarity < c.negativeCutoff:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func (c *SentimentClassifier) score(ctx context.Context, text string) (polarity float64, err error) {
	if c.scorer == nil {
		return 0, errors.New("no polarity scorer configured")
	}

	defer func() {
		if r := recover(); r != nil {
			polarity = 0
			err = fmt.Errorf("polarity scorer panic: %v", r)
		}
	}()

	polarity, err = c.scorer.ScorePolarity(ctx, text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(polarity) || math.IsInf(polarity, 0) {
		return 0, errNonFinitePolarity
	}
	return ClampPolarity(polarity), nil
}

func ClampPolarity(p float64) float64 {
	return math.Max(-1, math.Min(1, p))
}
