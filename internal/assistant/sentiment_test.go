package assistant

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"voice-assistant/internal/common/logger"
)

func fixedPolarity(p float64) PolarityScorer {
	return PolarityScorerFunc(func(context.Context, string) (float64, error) {
		return p, nil
	})
}

func TestSentimentClassifier_Cutoffs(t *testing.T) {
	tests := []struct {
		polarity float64
		want     Sentiment
	}{
		{0.8, SentimentPositive},
		{0.31, SentimentPositive},
		{0.3, SentimentNeutral},
		{0, SentimentNeutral},
		{-0.3, SentimentNeutral},
		{-0.31, SentimentNegative},
		{-1, SentimentNegative},
	}

	for _, tt := range tests {
		c := NewSentimentClassifier(fixedPolarity(tt.polarity), DefaultPositiveCutoff, DefaultNegativeCutoff, logger.NewTestLogger(t))
		assert.Equal(t, tt.want, c.Classify(context.Background(), "texte"), "polarity %v", tt.polarity)
	}
}

func TestSentimentClassifier_FailuresAreNeutral(t *testing.T) {
	failing := PolarityScorerFunc(func(context.Context, string) (float64, error) {
		return 0.9, errors.New("backend down")
	})
	panicking := PolarityScorerFunc(func(context.Context, string) (float64, error) {
		panic("nil lexicon")
	})

	tests := []struct {
		name   string
		scorer PolarityScorer
	}{
		{"nil scorer", nil},
		{"error", failing},
		{"panic", panicking},
		{"NaN", fixedPolarity(math.NaN())},
		{"+Inf", fixedPolarity(math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSentimentClassifier(tt.scorer, DefaultPositiveCutoff, DefaultNegativeCutoff, logger.NewTestLogger(t))
			s, p := c.ClassifyWithPolarity(context.Background(), "je suis triste")
			assert.Equal(t, SentimentNeutral, s)
			assert.Equal(t, 0.0, p)
		})
	}
}

func TestSentimentClassifier_ClampsOutOfRange(t *testing.T) {
	c := NewSentimentClassifier(fixedPolarity(4.2), DefaultPositiveCutoff, DefaultNegativeCutoff, nil)
	s, p := c.ClassifyWithPolarity(context.Background(), "super")
	assert.Equal(t, SentimentPositive, s)
	assert.Equal(t, 1.0, p)

	c = NewSentimentClassifier(fixedPolarity(-7), DefaultPositiveCutoff, DefaultNegativeCutoff, nil)
	s, p = c.ClassifyWithPolarity(context.Background(), "nul")
	assert.Equal(t, SentimentNegative, s)
	assert.Equal(t, -1.0, p)
}

func TestSentimentClassifier_CustomCutoffs(t *testing.T) {
	c := NewSentimentClassifier(fixedPolarity(0.2), 0.1, -0.1, nil)
	assert.Equal(t, SentimentPositive, c.Classify(context.Background(), "bien"))
}

func TestSentimentClassifier_Label(t *testing.T) {
	c := NewSentimentClassifier(nil, DefaultPositiveCutoff, DefaultNegativeCutoff, nil)

	assert.Equal(t, SentimentPositive, c.Label(0.31))
	assert.Equal(t, SentimentNeutral, c.Label(0.3))
	assert.Equal(t, SentimentNeutral, c.Label(-0.3))
	assert.Equal(t, SentimentNegative, c.Label(-0.31))
}
