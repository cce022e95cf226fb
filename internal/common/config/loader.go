// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"voice-assistant/internal/assistant"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over it and applies
// environment overrides. A missing base file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// SENTIMENT_API_KEY overrides sentiment.api_key, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers values whose zero value is meaningful, so they cannot be filled in
// after unmarshalling.
func setDefaults(v *viper.Viper) {
	v.SetDefault("assistant.acceptance_threshold", assistant.DefaultAcceptanceThreshold)
	v.SetDefault("assistant.positive_cutoff", assistant.DefaultPositiveCutoff)
	v.SetDefault("assistant.negative_cutoff", assistant.DefaultNegativeCutoff)
	v.SetDefault("camunda.use_plaintext", true)
	v.SetDefault("server.enabled", true)
	v.SetDefault("sentiment.max_retries", 2)
	v.SetDefault("sentiment.cache.enabled", false)
	v.SetDefault("speech.enabled", false)
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // test/e2e
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			// Unset variables expand to empty so applyDefaults and overrideEmptyConfig apply.
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if secrets are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Sentiment.APIKey == "" {
		if val := os.Getenv("SENTIMENT_API_KEY"); val != "" {
			cfg.Sentiment.APIKey = val
		}
	}
	if cfg.Speech.CredentialsFile == "" {
		if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
			cfg.Speech.CredentialsFile = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "voice-assistant"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Assistant defaults
	if cfg.Assistant.WeatherKeyword == "" {
		cfg.Assistant.WeatherKeyword = assistant.DefaultWeatherKeyword
	}
	if len(cfg.Assistant.KnownCities) == 0 {
		cfg.Assistant.KnownCities = append([]string(nil), assistant.DefaultKnownCities...)
	}
	if len(cfg.Assistant.WeatherTable) == 0 {
		cfg.Assistant.WeatherTable = assistant.DefaultWeatherTable()
	}
	if cfg.Assistant.DefaultWeather.Temperature == "" && cfg.Assistant.DefaultWeather.Condition == "" {
		cfg.Assistant.DefaultWeather = assistant.DefaultWeatherRecord()
	}

	// Sentiment defaults
	if cfg.Sentiment.Provider == "" {
		cfg.Sentiment.Provider = SentimentProviderLexicon
	}
	if cfg.Sentiment.Timeout == 0 {
		cfg.Sentiment.Timeout = 5000
	}
	if cfg.Sentiment.Cache.TTL == 0 {
		cfg.Sentiment.Cache.TTL = 3600
	}

	// Speech defaults
	if cfg.Speech.PrimaryLanguage == "" {
		cfg.Speech.PrimaryLanguage = "fr-FR"
	}
	if cfg.Speech.FallbackLanguage == "" {
		cfg.Speech.FallbackLanguage = "en-US"
	}
	if cfg.Speech.SampleRate == 0 {
		cfg.Speech.SampleRate = 16000
	}
	if cfg.Speech.Timeout == 0 {
		cfg.Speech.Timeout = 10000
	}

	if cfg.Server.SessionIdleTimeout == 0 {
		cfg.Server.SessionIdleTimeout = 1800
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	a := cfg.Assistant
	if a.AcceptanceThreshold < 0 || a.AcceptanceThreshold >= 1 {
		return fmt.Errorf("assistant.acceptance_threshold must be in [0, 1), got %v", a.AcceptanceThreshold)
	}
	if a.PositiveCutoff <= a.NegativeCutoff {
		return fmt.Errorf("assistant.positive_cutoff (%v) must be greater than assistant.negative_cutoff (%v)",
			a.PositiveCutoff, a.NegativeCutoff)
	}

	switch cfg.Sentiment.Provider {
	case SentimentProviderLexicon:
	case SentimentProviderRemote:
		if cfg.Sentiment.BaseURL == "" {
			return fmt.Errorf("sentiment.base_url is required for the remote provider")
		}
	default:
		return fmt.Errorf("unknown sentiment.provider %q", cfg.Sentiment.Provider)
	}

	if cfg.Sentiment.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when sentiment.cache is enabled")
	}

	for name := range cfg.Workers {
		if IsWorkerEnabled(cfg, name) && cfg.Camunda.BrokerAddress == "" {
			return fmt.Errorf("camunda.broker_address is required: worker %s is enabled", name)
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
