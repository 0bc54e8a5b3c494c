package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use an underscore delimiter (e.g., TMDB_API_KEY).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8000)
	Port int `envconfig:"PORT" default:"8000"`

	// DatabaseURL is the record store connection URL.
	// Env: DATABASE_URL (default: sqlite:///./recommendations.db)
	DatabaseURL string `envconfig:"DATABASE_URL" default:"sqlite:///./recommendations.db"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// GeminiAPIKey is used when SUGGESTION_API_KEY is unset.
	// Env: GEMINI_API_KEY
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Suggestion configures the LLM.
	Suggestion SuggestionEnv `envconfig:"SUGGESTION"`

	// TMDB configures the movie catalog.
	TMDB TMDBEnv `envconfig:"TMDB"`

	// CORSAllowedOrigins is a comma-separated list of browser origins.
	// Env: CORS_ALLOWED_ORIGINS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,https://movie-reco-bice.vercel.app"`

	// EnrichmentParallelism bounds concurrent catalog lookups per request.
	// Env: ENRICHMENT_PARALLELISM (default: 5)
	EnrichmentParallelism int `envconfig:"ENRICHMENT_PARALLELISM" default:"5"`
}

// SuggestionEnv holds environment configuration for the LLM.
type SuggestionEnv struct {
	// Provider is openai (any OpenAI-compatible API) or anthropic.
	// Env: SUGGESTION_PROVIDER (default: openai)
	Provider string `envconfig:"PROVIDER" default:"openai"`

	// BaseURL overrides the provider's API base URL.
	// Env: SUGGESTION_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model overrides the provider's default model.
	// Env: SUGGESTION_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: SUGGESTION_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the per-call timeout in seconds.
	// Env: SUGGESTION_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`

	// MaxTokens is the completion token limit.
	// Env: SUGGESTION_MAX_TOKENS (default: 2048)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"2048"`

	// Temperature is the sampling temperature.
	// Env: SUGGESTION_TEMPERATURE (default: 0.7)
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.7"`

	// Format is json or list.
	// Env: SUGGESTION_FORMAT (default: json)
	Format string `envconfig:"FORMAT" default:"json"`
}

// TMDBEnv holds environment configuration for the catalog.
type TMDBEnv struct {
	// APIKey is the TMDB v3 API key.
	// Env: TMDB_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// BaseURL is the API base URL.
	// Env: TMDB_BASE_URL
	BaseURL string `envconfig:"BASE_URL" default:"https://api.themoviedb.org/3"`

	// ImageBaseURL is prefixed to poster paths.
	// Env: TMDB_IMAGE_BASE_URL
	ImageBaseURL string `envconfig:"IMAGE_BASE_URL" default:"https://image.tmdb.org/t/p/w500"`

	// Timeout is the per-call timeout in seconds.
	// Env: TMDB_TIMEOUT (default: 10)
	Timeout float64 `envconfig:"TIMEOUT" default:"10"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "MOVIEFINDER" would require MOVIEFINDER_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DatabaseURL != "" {
		cfg = applyOption(cfg, WithDatabaseURL(e.DatabaseURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	apiKey := e.Suggestion.APIKey
	if apiKey == "" {
		apiKey = e.GeminiAPIKey
	}
	cfg = applyOption(cfg, WithSuggestionConfig(e.Suggestion.ToSuggestionConfig(apiKey)))
	cfg = applyOption(cfg, WithTMDBConfig(e.TMDB.ToTMDBConfig()))

	if e.CORSAllowedOrigins != "" {
		cfg = applyOption(cfg, WithCORSAllowedOrigins(ParseList(e.CORSAllowedOrigins)))
	}
	if e.EnrichmentParallelism != 0 {
		cfg = applyOption(cfg, WithParallelism(e.EnrichmentParallelism))
	}
	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToSuggestionConfig converts SuggestionEnv to SuggestionConfig. Base URL
// and model fall back to the selected provider's defaults.
func (s SuggestionEnv) ToSuggestionConfig(apiKey string) SuggestionConfig {
	provider := Provider(strings.ToLower(strings.TrimSpace(s.Provider)))
	if provider == "" {
		provider = DefaultSuggestionProvider
	}

	baseURL, model := DefaultSuggestionBaseURL, DefaultSuggestionModel
	if provider == ProviderAnthropic {
		baseURL, model = DefaultAnthropicBaseURL, DefaultAnthropicModel
	}
	if s.BaseURL != "" {
		baseURL = s.BaseURL
	}
	if s.Model != "" {
		model = s.Model
	}

	return NewSuggestionConfigWithOptions(
		WithProvider(provider),
		WithBaseURL(baseURL),
		WithModel(model),
		WithAPIKey(apiKey),
		WithTimeout(seconds(s.Timeout)),
		WithMaxTokens(s.MaxTokens),
		WithTemperature(s.Temperature),
		WithFormat(Format(strings.ToLower(strings.TrimSpace(s.Format)))),
	)
}

// ToTMDBConfig converts TMDBEnv to TMDBConfig.
func (t TMDBEnv) ToTMDBConfig() TMDBConfig {
	return NewTMDBConfig().
		WithAPIKey(t.APIKey).
		WithBaseURL(t.BaseURL).
		WithImageBaseURL(t.ImageBaseURL).
		WithTimeout(seconds(t.Timeout))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
