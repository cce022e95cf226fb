package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/common/logger"
)

func newTestGenerator(t *testing.T, scorer PolarityScorer, mutate func(*Options)) *Generator {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	g, err := NewGenerator(opts, scorer, logger.NewTestLogger(t))
	require.NoError(t, err)
	return g
}

func responseTexts(t *testing.T, c *Catalog, name string) []string {
	t.Helper()
	in, ok := c.Intent(name)
	require.True(t, ok)
	out := make([]string, 0, len(in.Responses))
	for _, r := range in.Responses {
		out = append(out, r.Text())
	}
	return out
}

func TestGenerator_GreetingReturnsDeclaredResponse(t *testing.T) {
	g := newTestGenerator(t, fixedPolarity(0), nil)

	res := g.Respond(context.Background(), "Bonjour")
	assert.Equal(t, RouteIntent, res.Route)
	assert.Equal(t, IntentGreeting, res.Intent)
	assert.Equal(t, 1.0, res.Score)
	assert.Contains(t, responseTexts(t, g.Catalog(), IntentGreeting), res.Reply)
}

func TestGenerator_PickerSelectsResponse(t *testing.T) {
	g := newTestGenerator(t, nil, func(o *Options) {
		o.Picker = func(n int) int { return n - 1 }
	})

	assert.Equal(t, "Au revoir et merci de votre visite!", g.GetResponse(context.Background(), "au revoir"))
}

func TestGenerator_SharedPatternGoesToFirstIntent(t *testing.T) {
	g := newTestGenerator(t, nil, nil)

	res := g.Respond(context.Background(), "ça va")
	assert.Equal(t, IntentGreeting, res.Intent)
}

func TestGenerator_WeatherShortCircuits(t *testing.T) {
	g := newTestGenerator(t, fixedPolarity(-0.9), nil)

	res := g.Respond(context.Background(), "Quelle est la météo à Paris ?")
	assert.Equal(t, RouteWeather, res.Route)
	assert.Equal(t, "Paris", res.City)
	assert.Contains(t, res.Reply, "Paris")
	assert.Contains(t, res.Reply, "22°C")
	assert.Contains(t, res.Reply, "ensoleillé")

	res = g.Respond(context.Background(), "météo")
	assert.Equal(t, RouteWeather, res.Route)
	assert.Equal(t, weatherClarification, res.Reply)
	assert.Empty(t, res.City)
}

func TestGenerator_WeatherPhrasingWithoutKeyword(t *testing.T) {
	g := newTestGenerator(t, nil, nil)

	res := g.Respond(context.Background(), "Quel temps fait-il à Paris")
	assert.Equal(t, RouteFallback, res.Route)
	assert.Empty(t, res.City)
	assert.Equal(t, ReplyRephrase, res.Reply)

	res = g.Respond(context.Background(), "quel temps fait-il")
	assert.NotEqual(t, IntentWeather, res.Intent)
	assert.NotEqual(t, weatherClarification, res.Reply)
}

func TestGenerator_WeatherIntentNeverMatches(t *testing.T) {
	g := newTestGenerator(t, nil, nil)

	for _, text := range []string{"météo", "prévisions météo", "Météo à Paris"} {
		res := g.Respond(context.Background(), text)
		assert.Equal(t, RouteWeather, res.Route, text)
		assert.Empty(t, res.Intent, text)
	}
}

func TestGenerator_SentimentFallback(t *testing.T) {
	const unmatched = "je déteste vraiment tout cela"

	tests := []struct {
		name      string
		scorer    PolarityScorer
		reply     string
		sentiment Sentiment
	}{
		{"negative", fixedPolarity(-0.8), ReplyNegative, SentimentNegative},
		{"positive", fixedPolarity(0.7), ReplyPositive, SentimentPositive},
		{"neutral", fixedPolarity(0.1), ReplyRephrase, SentimentNeutral},
		{"scorer error", PolarityScorerFunc(func(context.Context, string) (float64, error) {
			return -1, errors.New("timeout")
		}), ReplyRephrase, SentimentNeutral},
		{"no scorer", nil, ReplyRephrase, SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, tt.scorer, nil)
			require.False(t, g.Matcher().Resolve(g.Normalizer().Normalize(unmatched)).Matched())

			res := g.Respond(context.Background(), unmatched)
			assert.Equal(t, RouteFallback, res.Route)
			assert.Equal(t, tt.reply, res.Reply)
			assert.Equal(t, tt.sentiment, res.Sentiment)
		})
	}
}

func TestGenerator_EmptyInput(t *testing.T) {
	g := newTestGenerator(t, fixedPolarity(0), nil)

	assert.NotPanics(t, func() {
		assert.Equal(t, ReplyRephrase, g.GetResponse(context.Background(), ""))
		assert.Equal(t, ReplyRephrase, g.GetResponse(context.Background(), "   ?! "))
	})
}

func TestGenerator_ComputedRepliesFollowClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 5, 0, 0, time.Local)
	g := newTestGenerator(t, nil, func(o *Options) {
		o.Clock = func() time.Time { return now }
	})

	assert.Equal(t, "Il est actuellement 09:05.", g.GetResponse(context.Background(), "quelle heure"))
	assert.Equal(t, "Nous sommes le 01/06/2025.", g.GetResponse(context.Background(), "quelle date"))

	now = time.Date(2025, 6, 2, 17, 45, 0, 0, time.Local)
	assert.Equal(t, "Il est actuellement 17:45.", g.GetResponse(context.Background(), "quelle heure"))
	assert.Equal(t, "Nous sommes le 02/06/2025.", g.GetResponse(context.Background(), "quelle date"))
}

func TestGenerator_PanicYieldsApology(t *testing.T) {
	g := newTestGenerator(t, nil, func(o *Options) {
		o.Stemmer = identityStem
		o.Intents = []Intent{{
			Name:      "broken",
			Patterns:  []string{"boum"},
			Responses: []Response{Computed(func() string { panic("clock unavailable") })},
		}}
	})

	res := g.Respond(context.Background(), "boum")
	assert.Equal(t, RouteError, res.Route)
	assert.Equal(t, ReplyApology, res.Reply)
}

func TestGenerator_InvalidCatalog(t *testing.T) {
	opts := DefaultOptions()
	opts.Intents = []Intent{{Name: "empty"}}

	_, err := NewGenerator(opts, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	g := newTestGenerator(t, fixedPolarity(-0.5), nil)
	inputs := []string{"bonjour", "météo à Lyon", "quelle heure", "rien à voir ici", "au revoir"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, in := range inputs {
				assert.NotEmpty(t, g.GetResponse(context.Background(), in))
			}
		}()
	}
	wg.Wait()
}

func TestFallbackReply(t *testing.T) {
	assert.Equal(t, ReplyNegative, FallbackReply(SentimentNegative))
	assert.Equal(t, ReplyPositive, FallbackReply(SentimentPositive))
	assert.Equal(t, ReplyRephrase, FallbackReply(SentimentNeutral))
	assert.Equal(t, ReplyRephrase, FallbackReply(""))
}
