// Package service provides the application services behind the HTTP, MCP
// and library surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/internal/metrics"
)

// DefaultParallelism bounds concurrent per-title catalog lookups.
const DefaultParallelism = movie.MaxSuggestions

// Recommendation turns a request into enriched movies and records the result.
type Recommendation struct {
	suggester   movie.Suggester
	catalog     movie.Catalog
	store       recommendation.Store
	parallelism int
	log         *slog.Logger
}

// NewRecommendation creates a new Recommendation service.
func NewRecommendation(
	suggester movie.Suggester,
	catalog movie.Catalog,
	store recommendation.Store,
	log *slog.Logger,
) *Recommendation {
	if log == nil {
		log = slog.Default()
	}
	return &Recommendation{
		suggester:   suggester,
		catalog:     catalog,
		store:       store,
		parallelism: DefaultParallelism,
		log:         log,
	}
}

// WithParallelism sets how many titles are enriched at once. Values below
// one are ignored.
func (s *Recommendation) WithParallelism(n int) *Recommendation {
	if n > 0 {
		s.parallelism = n
	}
	return s
}

// Recommend runs the pipeline and stores the outcome. A storage failure is
// logged and does not affect the returned Response. Nothing is stored when
// the pipeline fails.
func (s *Recommendation) Recommend(ctx context.Context, request movie.Request) (movie.Response, error) {
	ctx = context.WithoutCancel(ctx)

	if err := request.Validate(); err != nil {
		return movie.Response{}, err
	}

	start := time.Now()
	items, err := s.Enrich(ctx, request)
	metrics.RecordRecommendation(outcome(err), time.Since(start))
	if err != nil {
		s.log.WarnContext(ctx, "recommendation failed", slog.Any("error", err))
		return movie.Response{}, err
	}

	if err := s.persist(ctx, request, items); err != nil {
		metrics.RecordPersistenceFailure()
		s.log.ErrorContext(ctx, "failed to store recommendation", slog.Any("error", err))
	}

	return movie.NewResponse(request.Description(), items), nil
}

// Enrich asks for suggestions and resolves each against the catalog.
// Unresolved titles are dropped; provider lookup failures leave watch_on
// empty. Items keep suggestion order. Once started the run ignores caller
// cancellation.
func (s *Recommendation) Enrich(ctx context.Context, request movie.Request) ([]movie.MovieItem, error) {
	ctx = context.WithoutCancel(ctx)

	suggestions, err := s.suggester.Suggest(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, movie.ErrNoSuggestions
	}

	slots := make([]*movie.MovieItem, len(suggestions))

	g := new(errgroup.Group)
	g.SetLimit(s.parallelism)
	for i, suggestion := range suggestions {
		g.Go(func() error {
			item, ok := s.enrichOne(ctx, request, suggestion)
			if ok {
				slots[i] = &item
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]movie.MovieItem, 0, len(slots))
	for _, item := range slots {
		if item != nil {
			items = append(items, *item)
		}
	}
	if len(items) == 0 {
		return nil, movie.ErrNoDetailsResolved
	}
	return items, nil
}

func (s *Recommendation) enrichOne(ctx context.Context, request movie.Request, suggestion movie.Suggestion) (movie.MovieItem, bool) {
	resolution := s.catalog.ResolveTitle(ctx, suggestion.Title())
	record, ok := resolution.Record()
	if !ok {
		metrics.RecordTitleDropped()
		s.log.WarnContext(ctx, "dropping unresolved title",
			slog.String("title", suggestion.Title()),
			slog.Any("error", resolution.Err()),
		)
		return movie.MovieItem{}, false
	}

	availability := s.catalog.ListProviders(ctx, record.ID(), request.MovieType())
	if err := availability.Err(); err != nil {
		s.log.WarnContext(ctx, "no streaming providers for title",
			slog.String("title", suggestion.Title()),
			slog.Any("error", err),
		)
	} else {
		s.log.DebugContext(ctx, "resolved streaming providers",
			slog.String("title", suggestion.Title()),
			slog.String("region", availability.Region().String()),
			slog.Int("providers", len(availability.Providers())),
		)
	}

	return movie.NewMovieItemFromRecord(suggestion.Title(), record, availability), true
}

func (s *Recommendation) persist(ctx context.Context, request movie.Request, items []movie.MovieItem) error {
	text, err := movie.MarshalItems(items)
	if err != nil {
		return fmt.Errorf("%w: %w", movie.ErrPersistence, err)
	}
	saved, err := s.store.Insert(ctx, recommendation.NewStored(request.Summary(), text))
	if err != nil {
		return fmt.Errorf("%w: %w", movie.ErrPersistence, err)
	}
	s.log.DebugContext(ctx, "stored recommendation", slog.Int64("id", saved.ID()), slog.Int("movies", len(items)))
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, movie.ErrNoSuggestions):
		return metrics.OutcomeNoSuggestions
	case errors.Is(err, movie.ErrNoDetailsResolved):
		return metrics.OutcomeNoDetails
	case errors.Is(err, movie.ErrUpstreamGeneration):
		return metrics.OutcomeUpstream
	case errors.Is(err, movie.ErrMalformedSuggestion):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeError
	}
}
