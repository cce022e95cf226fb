// internal/common/config/config.go
package config

import (
	"voice-assistant/internal/assistant"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Assistant AssistantConfig         `mapstructure:"assistant"`
	Sentiment SentimentConfig         `mapstructure:"sentiment"`
	Speech    SpeechConfig            `mapstructure:"speech"`
	Server    ServerConfig            `mapstructure:"server"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Responder Configuration ---

// AssistantConfig tunes the response generator. Every field has a built-in default.
type AssistantConfig struct {
	AcceptanceThreshold float64                   `mapstructure:"acceptance_threshold"`
	PositiveCutoff      float64                   `mapstructure:"positive_cutoff"`
	NegativeCutoff      float64                   `mapstructure:"negative_cutoff"`
	WeatherKeyword      string                    `mapstructure:"weather_keyword"`
	KnownCities         []string                  `mapstructure:"known_cities"`
	WeatherTable        []assistant.WeatherRecord `mapstructure:"weather_table"`
	DefaultWeather      assistant.WeatherRecord   `mapstructure:"default_weather"`
}

const (
	SentimentProviderLexicon = "lexicon"
	SentimentProviderRemote  = "remote"
)

// SentimentConfig selects and tunes the polarity scorer used by the fallback path.
type SentimentConfig struct {
	Provider   string `mapstructure:"provider"` // lexicon | remote
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
	Cache      struct {
		Enabled bool `mapstructure:"enabled"`
		TTL     int  `mapstructure:"ttl"` // seconds
	} `mapstructure:"cache"`
}

// SpeechConfig holds settings for the Google Cloud Speech transcriber.
type SpeechConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	PrimaryLanguage  string `mapstructure:"primary_language"`
	FallbackLanguage string `mapstructure:"fallback_language"`
	SampleRate       int    `mapstructure:"sample_rate"`
	Timeout          int    `mapstructure:"timeout"` // milliseconds
	CredentialsFile  string `mapstructure:"credentials_file"`
}

type ServerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Address            string `mapstructure:"address"`
	SessionIdleTimeout int    `mapstructure:"session_idle_timeout"` // seconds; chat sessions idle longer are dropped
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// AssistantOptions maps the assistant section onto generator options.
func (c *Config) AssistantOptions() assistant.Options {
	a := c.Assistant
	opts := assistant.DefaultOptions()
	opts.AcceptanceThreshold = a.AcceptanceThreshold
	opts.PositiveCutoff = a.PositiveCutoff
	opts.NegativeCutoff = a.NegativeCutoff
	if a.WeatherKeyword != "" {
		opts.WeatherKeyword = a.WeatherKeyword
	}
	if len(a.KnownCities) > 0 {
		opts.KnownCities = append([]string(nil), a.KnownCities...)
	}
	if len(a.WeatherTable) > 0 {
		opts.WeatherTable = append([]assistant.WeatherRecord(nil), a.WeatherTable...)
	}
	if a.DefaultWeather.Temperature != "" || a.DefaultWeather.Condition != "" {
		opts.DefaultWeather = a.DefaultWeather
	}
	return opts
}
