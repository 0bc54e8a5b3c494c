// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 8000
	DefaultDatabaseURL           = "sqlite:///./recommendations.db"
	DefaultLogLevel              = "INFO"
	DefaultSuggestionProvider    = ProviderOpenAI
	DefaultSuggestionBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultSuggestionModel       = "gemini-2.5-flash"
	DefaultAnthropicBaseURL      = "https://api.anthropic.com"
	DefaultAnthropicModel        = "claude-sonnet-4-5"
	DefaultSuggestionTimeout     = 30 * time.Second
	DefaultSuggestionMaxTokens   = 2048
	DefaultSuggestionTemperature = 0.7
	DefaultSuggestionFormat      = FormatJSON
	DefaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	DefaultTMDBImageBaseURL      = "https://image.tmdb.org/t/p/w500"
	DefaultTMDBTimeout           = 10 * time.Second
	DefaultCORSAllowedOrigins    = "http://localhost:5173,https://movie-reco-bice.vercel.app"
	DefaultParallelism           = 5
)

// Validation errors returned by AppConfig.Validate.
var (
	ErrMissingSuggestionKey = errors.New("suggestion API key is not set (GEMINI_API_KEY or SUGGESTION_API_KEY)")
	ErrMissingCatalogKey    = errors.New("catalog API key is not set (TMDB_API_KEY)")
	ErrInvalidConfig        = errors.New("invalid configuration")
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Provider selects the suggestion backend.
type Provider string

// Provider values.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Format selects how the model is asked to lay out its suggestions.
type Format string

// Format values.
const (
	FormatJSON Format = "json"
	FormatList Format = "list"
)

// SuggestionConfig configures the LLM used to propose titles.
type SuggestionConfig struct {
	provider    Provider
	baseURL     string
	model       string
	apiKey      string
	timeout     time.Duration
	maxTokens   int
	temperature float64
	format      Format
}

// NewSuggestionConfig returns a SuggestionConfig with defaults.
func NewSuggestionConfig() SuggestionConfig {
	return SuggestionConfig{
		provider:    DefaultSuggestionProvider,
		baseURL:     DefaultSuggestionBaseURL,
		model:       DefaultSuggestionModel,
		timeout:     DefaultSuggestionTimeout,
		maxTokens:   DefaultSuggestionMaxTokens,
		temperature: DefaultSuggestionTemperature,
		format:      DefaultSuggestionFormat,
	}
}

// Provider returns the suggestion backend.
func (s SuggestionConfig) Provider() Provider { return s.provider }

// BaseURL returns the API base URL.
func (s SuggestionConfig) BaseURL() string { return s.baseURL }

// Model returns the model identifier.
func (s SuggestionConfig) Model() string { return s.model }

// APIKey returns the API key.
func (s SuggestionConfig) APIKey() string { return s.apiKey }

// Timeout returns the per-call timeout.
func (s SuggestionConfig) Timeout() time.Duration { return s.timeout }

// MaxTokens returns the completion token limit.
func (s SuggestionConfig) MaxTokens() int { return s.maxTokens }

// Temperature returns the sampling temperature.
func (s SuggestionConfig) Temperature() float64 { return s.temperature }

// Format returns the requested output format.
func (s SuggestionConfig) Format() Format { return s.format }

// SuggestionOption configures a SuggestionConfig.
type SuggestionOption func(*SuggestionConfig)

// WithProvider sets the suggestion backend.
func WithProvider(p Provider) SuggestionOption {
	return func(s *SuggestionConfig) { s.provider = p }
}

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) SuggestionOption {
	return func(s *SuggestionConfig) { s.baseURL = u }
}

// WithModel sets the model identifier.
func WithModel(m string) SuggestionOption {
	return func(s *SuggestionConfig) { s.model = m }
}

// WithAPIKey sets the API key.
func WithAPIKey(k string) SuggestionOption {
	return func(s *SuggestionConfig) { s.apiKey = k }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) SuggestionOption {
	return func(s *SuggestionConfig) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int) SuggestionOption {
	return func(s *SuggestionConfig) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) SuggestionOption {
	return func(s *SuggestionConfig) { s.temperature = t }
}

// WithFormat sets the requested output format.
func WithFormat(f Format) SuggestionOption {
	return func(s *SuggestionConfig) { s.format = f }
}

// NewSuggestionConfigWithOptions creates a SuggestionConfig from defaults and options.
func NewSuggestionConfigWithOptions(opts ...SuggestionOption) SuggestionConfig {
	s := NewSuggestionConfig()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// TMDBConfig configures the movie catalog client.
type TMDBConfig struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	timeout      time.Duration
}

// NewTMDBConfig returns a TMDBConfig with defaults.
func NewTMDBConfig() TMDBConfig {
	return TMDBConfig{
		baseURL:      DefaultTMDBBaseURL,
		imageBaseURL: DefaultTMDBImageBaseURL,
		timeout:      DefaultTMDBTimeout,
	}
}

// APIKey returns the catalog API key.
func (t TMDBConfig) APIKey() string { return t.apiKey }

// BaseURL returns the catalog API base URL.
func (t TMDBConfig) BaseURL() string { return t.baseURL }

// ImageBaseURL returns the poster image base URL.
func (t TMDBConfig) ImageBaseURL() string { return t.imageBaseURL }

// Timeout returns the per-call timeout.
func (t TMDBConfig) Timeout() time.Duration { return t.timeout }

// WithAPIKey returns a copy with the API key set.
func (t TMDBConfig) WithAPIKey(k string) TMDBConfig {
	t.apiKey = k
	return t
}

// WithBaseURL returns a copy with the base URL set.
func (t TMDBConfig) WithBaseURL(u string) TMDBConfig {
	if u != "" {
		t.baseURL = u
	}
	return t
}

// WithImageBaseURL returns a copy with the image base URL set.
func (t TMDBConfig) WithImageBaseURL(u string) TMDBConfig {
	if u != "" {
		t.imageBaseURL = u
	}
	return t
}

// WithTimeout returns a copy with the timeout set.
func (t TMDBConfig) WithTimeout(d time.Duration) TMDBConfig {
	if d > 0 {
		t.timeout = d
	}
	return t
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host        string
	port        int
	databaseURL string
	logLevel    string
	logFormat   LogFormat
	suggestion  SuggestionConfig
	tmdb        TMDBConfig
	corsOrigins []string
	parallelism int
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:        DefaultHost,
		port:        DefaultPort,
		databaseURL: DefaultDatabaseURL,
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
		suggestion:  NewSuggestionConfig(),
		tmdb:        NewTMDBConfig(),
		corsOrigins: ParseList(DefaultCORSAllowedOrigins),
		parallelism: DefaultParallelism,
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DatabaseURL returns the record store connection URL.
func (c AppConfig) DatabaseURL() string { return c.databaseURL }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Suggestion returns the LLM configuration.
func (c AppConfig) Suggestion() SuggestionConfig { return c.suggestion }

// TMDB returns the catalog configuration.
func (c AppConfig) TMDB() TMDBConfig { return c.tmdb }

// CORSAllowedOrigins returns the browser origins allowed to call the API.
func (c AppConfig) CORSAllowedOrigins() []string {
	out := make([]string, len(c.corsOrigins))
	copy(out, c.corsOrigins)
	return out
}

// Parallelism returns the maximum concurrent catalog lookups per request.
func (c AppConfig) Parallelism() int { return c.parallelism }

// Validate reports missing credentials and out-of-range values.
func (c AppConfig) Validate() error {
	var errs []error
	if c.suggestion.apiKey == "" {
		errs = append(errs, ErrMissingSuggestionKey)
	}
	if c.tmdb.apiKey == "" {
		errs = append(errs, ErrMissingCatalogKey)
	}
	switch c.suggestion.provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown suggestion provider %q", ErrInvalidConfig, c.suggestion.provider))
	}
	switch c.suggestion.format {
	case FormatJSON, FormatList:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown suggestion format %q", ErrInvalidConfig, c.suggestion.format))
	}
	if c.parallelism < 1 {
		errs = append(errs, fmt.Errorf("%w: parallelism must be at least 1", ErrInvalidConfig))
	}
	if c.port < 0 || c.port > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.port))
	}
	return errors.Join(errs...)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDatabaseURL sets the record store URL.
func WithDatabaseURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.databaseURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithSuggestionConfig sets the LLM configuration.
func WithSuggestionConfig(s SuggestionConfig) AppConfigOption {
	return func(c *AppConfig) { c.suggestion = s }
}

// WithTMDBConfig sets the catalog configuration.
func WithTMDBConfig(t TMDBConfig) AppConfigOption {
	return func(c *AppConfig) { c.tmdb = t }
}

// WithCORSAllowedOrigins sets the CORS allow-list.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithParallelism sets the per-request catalog lookup concurrency.
func WithParallelism(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are reported only as set or unset.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("log_level", c.logLevel),
		slog.String("database_url", maskURL(c.databaseURL)),
		slog.String("suggestion_provider", string(c.suggestion.provider)),
		slog.String("suggestion_base_url", c.suggestion.baseURL),
		slog.String("suggestion_model", c.suggestion.model),
		slog.String("suggestion_format", string(c.suggestion.format)),
		slog.Bool("suggestion_api_key_set", c.suggestion.apiKey != ""),
		slog.String("tmdb_base_url", c.tmdb.baseURL),
		slog.Bool("tmdb_api_key_set", c.tmdb.apiKey != ""),
		slog.Any("cors_allowed_origins", c.corsOrigins),
		slog.Int("parallelism", c.parallelism),
	}
}

// maskURL hides the password in a connection URL. SQLite paths are shown as is.
func maskURL(raw string) string {
	if raw == "" {
		return "(default)"
	}
	if strings.HasPrefix(raw, "sqlite:") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

// ParseList parses a comma-separated string, dropping blanks.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
