package moviefinder

import (
	"io"
	"log/slog"

	"github.com/helixml/moviefinder/application/service"
	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/infrastructure/catalog"
	"github.com/helixml/moviefinder/infrastructure/provider"
	"github.com/helixml/moviefinder/infrastructure/suggestion"
)

// databaseType identifies the record store backend.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseRelational
	databaseMongo
	databaseCustom
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	database     databaseType
	dbURL        string
	store        recommendation.Store
	textProvider provider.TextGenerator
	catalog      movie.Catalog
	tmdb         *catalog.Config
	format       suggestion.Format
	maxTokens    int
	temperature  float64
	parallelism  int
	logger       *slog.Logger
	closers      []io.Closer
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		format:      suggestion.FormatJSON,
		maxTokens:   2048,
		temperature: 0.7,
		parallelism: service.DefaultParallelism,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores recommendations in a SQLite file. Use ":memory:" for an
// in-process database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseRelational
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres stores recommendations in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databaseRelational
		c.dbURL = dsn
	}
}

// WithMongo stores recommendations in MongoDB.
func WithMongo(uri string) Option {
	return func(c *clientConfig) {
		c.database = databaseMongo
		c.dbURL = uri
	}
}

// WithDatabaseURL picks the backend from the URL scheme: sqlite:///,
// postgres://, postgresql://, mongodb:// or mongodb+srv://.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.database = databaseRelational
		if isMongoURL(url) {
			c.database = databaseMongo
		}
		c.dbURL = url
	}
}

// WithStore sets a custom record store.
func WithStore(s recommendation.Store) Option {
	return func(c *clientConfig) {
		c.database = databaseCustom
		c.store = s
	}
}

// WithOpenAI sets an OpenAI-compatible endpoint as the text provider. The
// default endpoint is Gemini's OpenAI-compatible API.
func WithOpenAI(apiKey string) Option {
	return WithOpenAIConfig(provider.OpenAIConfig{APIKey: apiKey})
}

// WithOpenAIConfig sets an OpenAI-compatible text provider with custom configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProviderFromConfig(cfg)
	}
}

// WithAnthropic sets Anthropic Claude as the text provider.
func WithAnthropic(apiKey string) Option {
	return WithAnthropicConfig(provider.AnthropicConfig{APIKey: apiKey})
}

// WithAnthropicConfig sets Anthropic Claude with custom configuration.
func WithAnthropicConfig(cfg provider.AnthropicConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewAnthropicProviderFromConfig(cfg)
	}
}

// WithTextProvider sets a custom text generation provider.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithTMDB uses the public TMDB API as the catalog.
func WithTMDB(apiKey string) Option {
	return WithTMDBConfig(catalog.Config{APIKey: apiKey})
}

// WithTMDBConfig uses a TMDB-compatible catalog with custom configuration.
func WithTMDBConfig(cfg catalog.Config) Option {
	return func(c *clientConfig) {
		c.catalog = nil
		c.tmdb = &cfg
	}
}

// WithCatalog sets a custom movie catalog.
func WithCatalog(cat movie.Catalog) Option {
	return func(c *clientConfig) {
		c.catalog = cat
		c.tmdb = nil
	}
}

// WithSuggestionFormat sets the layout the model is asked to answer in.
func WithSuggestionFormat(f suggestion.Format) Option {
	return func(c *clientConfig) {
		c.format = f
	}
}

// WithMaxTokens sets the completion token limit. Values <= 0 are ignored.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *clientConfig) {
		c.temperature = t
	}
}

// WithParallelism sets how many titles are enriched concurrently.
// Defaults to 5. Values <= 0 are ignored.
func WithParallelism(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
