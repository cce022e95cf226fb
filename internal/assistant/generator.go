// internal/assistant/generator.go
package assistant

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"voice-assistant/internal/common/logger"
)

const (
	ReplyNegative = "Je suis désolé que vous ressentiez cela. Voulez-vous m'en parler davantage?"
	ReplyPositive = "Ravi de vous sentir de si bonne humeur! Que puis-je faire pour vous?"
	ReplyRephrase = "Je ne suis pas sûr de comprendre. Pouvez-vous reformuler?"
	ReplyApology  = "Désolé, une erreur s'est produite. Pouvez-vous réessayer?"
)

// Route records which branch produced a reply.
type Route string

const (
	RouteWeather  Route = "weather"
	RouteIntent   Route = "intent"
	RouteFallback Route = "fallback"
	RouteError    Route = "error"
)

type Result struct {
	Reply     string    `json:"reply"`
	Route     Route     `json:"route"`
	Intent    string    `json:"intent,omitempty"`
	Score     float64   `json:"score,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	City      string    `json:"city,omitempty"`
}

// Picker returns an index in [0, n).
type Picker func(n int) int

type Options struct {
	AcceptanceThreshold float64
	PositiveCutoff      float64
	NegativeCutoff      float64
	WeatherKeyword      string
	KnownCities         []string
	WeatherTable        []WeatherRecord
	DefaultWeather      WeatherRecord

	// Optional collaborators; zero values select the built-in ones.
	Stemmer StemFunc
	Intents []Intent
	Clock   Clock
	Picker  Picker
}

func DefaultOptions() Options {
	return Options{
		AcceptanceThreshold: DefaultAcceptanceThreshold,
		PositiveCutoff:      DefaultPositiveCutoff,
		NegativeCutoff:      DefaultNegativeCutoff,
		WeatherKeyword:      DefaultWeatherKeyword,
		KnownCities:         append([]string(nil), DefaultKnownCities...),
		WeatherTable:        DefaultWeatherTable(),
		DefaultWeather:      DefaultWeatherRecord(),
	}
}

// Generator turns one line of user text into one reply. It holds no per-call state and is
// safe for concurrent use when the scorer is.
type Generator struct {
	normalizer *Normalizer
	catalog    *Catalog
	matcher    *Matcher
	sentiment  *SentimentClassifier
	weather    *WeatherService
	pick       Picker
	logger     logger.Logger
}

func NewGenerator(opts Options, scorer PolarityScorer, log logger.Logger) (*Generator, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	stem := opts.Stemmer
	if stem == nil {
		stem = FrenchStemmer
	}
	normalizer := NewNormalizerWithStemmer(stem, log)

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	intents := opts.Intents
	if len(intents) == 0 {
		intents = DefaultIntents(clock)
	}
	catalog, err := NewCatalog(normalizer, intents...)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	pick := opts.Picker
	if pick == nil {
		pick = rand.IntN
	}

	return &Generator{
		normalizer: normalizer,
		catalog:    catalog,
		matcher:    NewMatcher(catalog, opts.AcceptanceThreshold),
		sentiment:  NewSentimentClassifier(scorer, opts.PositiveCutoff, opts.NegativeCutoff, log),
		weather:    NewWeatherService(opts.WeatherKeyword, opts.KnownCities, opts.WeatherTable, opts.DefaultWeather),
		pick:       pick,
		logger:     log,
	}, nil
}

func (g *Generator) Catalog() *Catalog                        { return g.catalog }
func (g *Generator) Normalizer() *Normalizer                  { return g.normalizer }
func (g *Generator) Matcher() *Matcher                        { return g.matcher }
func (g *Generator) SentimentClassifier() *SentimentClassifier { return g.sentiment }
func (g *Generator) Weather() *WeatherService                 { return g.weather }

// GetResponse returns the reply for text. It never fails.
func (g *Generator) GetResponse(ctx context.Context, text string) string {
	return g.Respond(ctx, text).Reply
}

// Respond runs normalize, weather short-circuit, intent match, then sentiment fallback.
func (g *Generator) Respond(ctx context.Context, text string) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("response generation failed", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			res = Result{Reply: ReplyApology, Route: RouteError}
		}
	}()

	tokens := g.normalizer.Normalize(text)

	if g.weather.Triggered(text) {
		reply, city := g.weather.handle(text)
		return Result{Reply: reply, Route: RouteWeather, City: city}
	}

	match := g.matcher.Resolve(tokens)
	if match.Matched() {
		responses := g.catalog.responses(match.Intent)
		chosen := responses[g.pick(len(responses))]
		return Result{
			Reply:  chosen.Text(),
			Route:  RouteIntent,
			Intent: match.Intent,
			Score:  match.Score,
		}
	}

	sentiment := g.sentiment.Classify(ctx, text)
	return Result{
		Reply:     FallbackReply(sentiment),
		Route:     RouteFallback,
		Sentiment: sentiment,
	}
}

func FallbackReply(s Sentiment) string {
	switch s {
	case SentimentNegative:
		return ReplyNegative
	case SentimentPositive:
		return ReplyPositive
	default:
		return ReplyRephrase
	}
}
