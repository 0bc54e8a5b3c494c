package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/domain/repository"
	"github.com/helixml/moviefinder/infrastructure/persistence"
	"github.com/helixml/moviefinder/internal/testdb"
)

type fakeSuggester struct {
	titles []string
	err    error
	calls  atomic.Int64
}

func (f *fakeSuggester) Suggest(_ context.Context, _ movie.Request) ([]movie.Suggestion, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]movie.Suggestion, len(f.titles))
	for i, t := range f.titles {
		out[i] = movie.NewSuggestion(t)
	}
	return out, nil
}

// fakeCatalog resolves titles present in records. Titles in failing resolve
// with a lookup error; titles in delays sleep before answering.
type fakeCatalog struct {
	records   map[string]movie.CatalogRecord
	providers map[int64][]string
	failing   map[string]bool
	brokenIDs map[int64]bool
	delays    map[string]time.Duration

	mu         sync.Mutex
	movieTypes []string
	inFlight   atomic.Int64
	maxFlight  atomic.Int64
}

func (f *fakeCatalog) ResolveTitle(_ context.Context, title string) movie.Resolution {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if d, ok := f.delays[title]; ok {
		time.Sleep(d)
	}
	if f.failing[title] {
		return movie.Unresolved(movie.ErrCatalogLookup)
	}
	rec, ok := f.records[title]
	if !ok {
		return movie.Unresolved(nil)
	}
	return movie.Resolved(rec)
}

func (f *fakeCatalog) ListProviders(_ context.Context, id int64, movieType string) movie.Availability {
	f.mu.Lock()
	f.movieTypes = append(f.movieTypes, movieType)
	f.mu.Unlock()

	if f.brokenIDs[id] {
		return movie.Unavailable(movie.ErrProviderLookup)
	}
	return movie.NewAvailability(movie.RegionFor(movieType), f.providers[id])
}

type fakeStore struct {
	repository.Store[recommendation.Stored]
	err  error
	mu   sync.Mutex
	rows []recommendation.Stored
}

func (f *fakeStore) Insert(_ context.Context, rec recommendation.Stored) (recommendation.Stored, error) {
	if f.err != nil {
		return recommendation.Stored{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := recommendation.ReconstructStored(int64(len(f.rows)+1), rec.UserInput(), rec.RecommendedMovies(), time.Now())
	f.rows = append(f.rows, saved)
	return saved, nil
}

func (f *fakeStore) stored() []recommendation.Stored {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recommendation.Stored(nil), f.rows...)
}

var sciFi = movie.NewRequest("I want a mind-bending sci-fi movie", "Hollywood", "any")

func catalogWith(titles ...string) *fakeCatalog {
	c := &fakeCatalog{
		records:   map[string]movie.CatalogRecord{},
		providers: map[int64][]string{},
	}
	for i, t := range titles {
		id := int64(i + 1)
		c.records[t] = movie.NewCatalogRecord(id, t, t+" overview", "https://img/"+t+".jpg", "2010-01-01", 7.0)
		c.providers[id] = []string{"Netflix"}
	}
	return c
}

func titlesOf(items []movie.MovieItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title()
	}
	return out
}

func TestRecommendation_Recommend_Example(t *testing.T) {
	cat := &fakeCatalog{
		records: map[string]movie.CatalogRecord{
			"Inception": movie.NewCatalogRecord(27205, "Inception", "Cobb steals secrets.", "", "2010-07-15", 8.3),
		},
		providers: map[int64][]string{27205: {"Netflix", "Netflix"}},
	}
	store := &fakeStore{}
	svc := NewRecommendation(&fakeSuggester{titles: []string{"Inception"}}, cat, store, nil)

	resp, err := svc.Recommend(context.Background(), sciFi)
	require.NoError(t, err)

	assert.Equal(t, sciFi.Description(), resp.Preference())
	require.Len(t, resp.Movies(), 1)
	got := resp.Movies()[0]
	assert.Equal(t, "Inception", got.Title())
	assert.InDelta(t, 8.3, got.Rating(), 1e-9)
	assert.Equal(t, []string{"Netflix"}, got.WatchOn())
	assert.Empty(t, got.PosterURL())

	rows := store.stored()
	require.Len(t, rows, 1)
	assert.Equal(t, "Desc: I want a mind-bending sci-fi movie, Type: Hollywood, Pref: any", rows[0].UserInput())
	movies, err := rows[0].Movies()
	require.NoError(t, err)
	assert.Equal(t, []string{"Inception"}, titlesOf(movies))
}

func TestRecommendation_Enrich_PreservesOrderUnderConcurrency(t *testing.T) {
	titles := []string{"T1", "T2", "T3", "T4", "T5"}
	cat := catalogWith(titles...)
	cat.delays = map[string]time.Duration{"T1": 40 * time.Millisecond, "T2": 30 * time.Millisecond, "T3": 20 * time.Millisecond}

	svc := NewRecommendation(&fakeSuggester{titles: titles}, cat, &fakeStore{}, nil)

	items, err := svc.Enrich(context.Background(), sciFi)
	require.NoError(t, err)
	assert.Equal(t, titles, titlesOf(items))
}

func TestRecommendation_Enrich_DropsUnresolvedTitles(t *testing.T) {
	cat := catalogWith("T1", "T3", "T5", "T2")
	cat.failing = map[string]bool{"T2": true}

	svc := NewRecommendation(&fakeSuggester{titles: []string{"T1", "T2", "T3", "T4", "T5"}}, cat, &fakeStore{}, nil)

	items, err := svc.Enrich(context.Background(), sciFi)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T3", "T5"}, titlesOf(items))
}

func TestRecommendation_Enrich_ProviderFailureKeepsItem(t *testing.T) {
	cat := catalogWith("T1", "T2")
	cat.brokenIDs = map[int64]bool{1: true}

	svc := NewRecommendation(&fakeSuggester{titles: []string{"T1", "T2"}}, cat, &fakeStore{}, nil)

	items, err := svc.Enrich(context.Background(), sciFi)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Empty(t, items[0].WatchOn())
	assert.NotNil(t, items[0].WatchOn())
	assert.Equal(t, "T1 overview", items[0].Overview())
	assert.Equal(t, []string{"Netflix"}, items[1].WatchOn())
}

func TestRecommendation_Enrich_PassesMovieTypeToProviderLookup(t *testing.T) {
	cat := catalogWith("Lagaan")
	req := movie.NewRequest("cricket drama", "Bollywood", "classic")

	svc := NewRecommendation(&fakeSuggester{titles: []string{"Lagaan"}}, cat, &fakeStore{}, nil)
	_, err := svc.Enrich(context.Background(), req)
	require.NoError(t, err)

	cat.mu.Lock()
	defer cat.mu.Unlock()
	assert.Equal(t, []string{"Bollywood"}, cat.movieTypes)
}

func TestRecommendation_Enrich_LogsProviderRegion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	req := movie.NewRequest("cricket drama", "Bollywood", "classic")

	svc := NewRecommendation(&fakeSuggester{titles: []string{"Lagaan"}}, catalogWith("Lagaan"), &fakeStore{}, logger)
	_, err := svc.Enrich(context.Background(), req)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"resolved streaming providers"`)
	assert.Contains(t, out, `"region":"IN"`)
	assert.Contains(t, out, `"providers":1`)
}

func TestRecommendation_Enrich_RespectsParallelism(t *testing.T) {
	titles := []string{"T1", "T2", "T3", "T4", "T5"}
	cat := catalogWith(titles...)
	cat.delays = map[string]time.Duration{}
	for _, title := range titles {
		cat.delays[title] = 10 * time.Millisecond
	}

	svc := NewRecommendation(&fakeSuggester{titles: titles}, cat, &fakeStore{}, nil).WithParallelism(2)
	_, err := svc.Enrich(context.Background(), sciFi)
	require.NoError(t, err)
	assert.LessOrEqual(t, cat.maxFlight.Load(), int64(2))
}

func TestRecommendation_Recommend_FatalOutcomes(t *testing.T) {
	upstream := errors.Join(movie.ErrUpstreamGeneration, errors.New("503"))
	malformed := errors.Join(movie.ErrMalformedSuggestion, errors.New("not json"))

	tests := []struct {
		name      string
		suggester *fakeSuggester
		catalog   *fakeCatalog
		want      error
	}{
		{name: "no suggestions", suggester: &fakeSuggester{}, catalog: catalogWith(), want: movie.ErrNoSuggestions},
		{name: "nothing resolved", suggester: &fakeSuggester{titles: []string{"A", "B"}}, catalog: catalogWith(), want: movie.ErrNoDetailsResolved},
		{name: "upstream", suggester: &fakeSuggester{err: upstream}, catalog: catalogWith(), want: movie.ErrUpstreamGeneration},
		{name: "malformed", suggester: &fakeSuggester{err: malformed}, catalog: catalogWith(), want: movie.ErrMalformedSuggestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := NewRecommendation(tt.suggester, tt.catalog, store, nil)

			_, err := svc.Recommend(context.Background(), sciFi)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.stored(), "nothing is stored on failure")
			assert.Equal(t, int64(1), tt.suggester.calls.Load(), "no retries")
		})
	}
}

func TestRecommendation_Recommend_PersistenceFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	svc := NewRecommendation(&fakeSuggester{titles: []string{"T1"}}, catalogWith("T1"), store, nil)

	resp, err := svc.Recommend(context.Background(), sciFi)
	require.NoError(t, err)
	assert.Equal(t, sciFi.Description(), resp.Preference())
	assert.Equal(t, []string{"T1"}, titlesOf(resp.Movies()))
}

func TestRecommendation_Recommend_Validation(t *testing.T) {
	suggester := &fakeSuggester{titles: []string{"T1"}}
	svc := NewRecommendation(suggester, catalogWith("T1"), &fakeStore{}, nil)

	_, err := svc.Recommend(context.Background(), movie.NewRequest(" ", "Hollywood", "any"))
	assert.ErrorIs(t, err, movie.ErrValidation)
	assert.Zero(t, suggester.calls.Load())
}

func TestRecommendation_Recommend_IgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewRecommendation(&fakeSuggester{titles: []string{"T1"}}, catalogWith("T1"), &fakeStore{}, nil)
	resp, err := svc.Recommend(ctx, sciFi)
	require.NoError(t, err)
	assert.Len(t, resp.Movies(), 1)
}

func TestRecommendation_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewRecommendationStore(testdb.New(t))

	svc := NewRecommendation(&fakeSuggester{titles: []string{"T1", "T2"}}, catalogWith("T1", "T2"), store, nil)
	_, err := svc.Recommend(ctx, sciFi)
	require.NoError(t, err)

	rows, err := NewHistory(store).List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	movies, err := rows[0].Movies()
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, titlesOf(movies))
	assert.Equal(t, "https://img/T1.jpg", movies[0].PosterURL())
}
