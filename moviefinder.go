// Package moviefinder recommends movies from a free-text description.
//
// A text generation provider suggests up to five titles, a TMDB-compatible
// catalog fills in overview, poster, rating and streaming providers, and the
// result is recorded in a store.
//
// Basic usage:
//
//	client, err := moviefinder.New(
//	    moviefinder.WithSQLite("recommendations.db"),
//	    moviefinder.WithOpenAI(os.Getenv("GEMINI_API_KEY")),
//	    moviefinder.WithTMDB(os.Getenv("TMDB_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Recommendations.Recommend(ctx,
//	    movie.NewRequest("a mind-bending sci-fi movie", "Hollywood", "any"))
package moviefinder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixml/moviefinder/application/service"
	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/infrastructure/catalog"
	"github.com/helixml/moviefinder/infrastructure/persistence"
	"github.com/helixml/moviefinder/infrastructure/suggestion"
	"github.com/helixml/moviefinder/internal/database"
	"github.com/helixml/moviefinder/internal/log"
)

// Client is the main entry point for the moviefinder library.
//
// Access services via struct fields:
//
//	client.Recommendations.Recommend(ctx, request)
//	client.History.List(ctx)
type Client struct {
	Recommendations *service.Recommendation
	History         *service.History

	db      *database.Database
	mongo   *persistence.MongoRecommendationStore
	closers []io.Closer

	logger *slog.Logger
	closed atomic.Bool
	mu     sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}
	if cfg.textProvider == nil {
		return nil, ErrNoTextProvider
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.Default().Slog()
	}

	cat := cfg.catalog
	if cat == nil && cfg.tmdb != nil {
		cat = catalog.NewClient(*cfg.tmdb, logger)
	}
	if cat == nil {
		return nil, ErrNoCatalog
	}

	client, store, err := open(cfg, logger)
	if err != nil {
		return nil, err
	}

	suggester := suggestion.NewGenerator(cfg.textProvider, logger).
		WithFormat(cfg.format).
		WithMaxTokens(cfg.maxTokens).
		WithTemperature(cfg.temperature)

	client.Recommendations = service.NewRecommendation(suggester, cat, store, logger).
		WithParallelism(cfg.parallelism)

	return client, nil
}

// OpenHistory creates a Client that only reads stored recommendations. It
// needs a database but no text provider or catalog; Recommendations is nil.
func OpenHistory(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.Default().Slog()
	}

	client, _, err := open(cfg, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func open(cfg *clientConfig, logger *slog.Logger) (*Client, recommendation.Store, error) {
	client := &Client{
		closers: cfg.closers,
		logger:  logger,
	}

	store, err := client.openStore(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}
	client.History = service.NewHistory(store)
	return client, store, nil
}

// openStore opens the configured backend and prepares its schema.
func (c *Client) openStore(ctx context.Context, cfg *clientConfig) (recommendation.Store, error) {
	switch cfg.database {
	case databaseCustom:
		return cfg.store, nil
	case databaseMongo:
		store, err := persistence.NewMongoRecommendationStore(ctx, cfg.dbURL)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		c.mongo = store
		return store, nil
	}

	if !database.IsRelationalURL(cfg.dbURL) {
		return nil, ErrUnsupportedDatabase
	}

	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if db.IsPostgres() {
		if err := db.ConfigurePool(10, 5, 30*time.Minute); err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("configure pool: %w", err), errClose)
		}
	}

	if err := persistence.AutoMigrate(ctx, db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(err, errClose)
	}
	if err := persistence.ValidateSchema(ctx, db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	c.db = &db
	return persistence.NewRecommendationStore(db), nil
}

// Close releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if c.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.mongo.Close(ctx); err != nil {
			return fmt.Errorf("close mongo: %w", err)
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	c.logger.Info("moviefinder client closed")
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func isMongoURL(url string) bool {
	return persistence.IsMongoURL(url)
}
