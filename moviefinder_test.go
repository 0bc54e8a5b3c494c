package moviefinder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/infrastructure/catalog"
	"github.com/helixml/moviefinder/infrastructure/provider"
	"github.com/helixml/moviefinder/infrastructure/suggestion"
)

type fakeTextGenerator struct {
	content string
	err     error
}

func (f fakeTextGenerator) ChatCompletion(_ context.Context, _ provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.content, "stop", provider.NewUsage(0, 0, 0)), nil
}

// fakeTMDBServer answers the two catalog endpoints for Inception only.
func fakeTMDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("query") != "Inception" {
			_, _ = w.Write([]byte(`{"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":27205,"title":"Inception","overview":"Dreams.","poster_path":"/i.jpg","release_date":"2010-07-15","vote_average":8.3}]}`))
	})
	mux.HandleFunc("/movie/27205/watch/providers", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":27205,"results":{"US":{"flatrate":[{"provider_name":"Netflix"}]}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, gen provider.TextGenerator, opts ...Option) *Client {
	t.Helper()
	srv := fakeTMDBServer(t)
	base := []Option{
		WithSQLite(filepath.Join(t.TempDir(), "recommendations.db")),
		WithTextProvider(gen),
		WithTMDBConfig(catalog.Config{APIKey: "k", BaseURL: srv.URL, ImageBaseURL: "https://img"}),
	}
	client, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !client.Closed() {
			_ = client.Close()
		}
	})
	return client
}

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := New(WithTextProvider(fakeTextGenerator{}), WithTMDB("k"))
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestNew_RequiresTextProvider(t *testing.T) {
	_, err := New(WithSQLite(":memory:"), WithTMDB("k"))
	assert.ErrorIs(t, err, ErrNoTextProvider)
}

func TestNew_RequiresCatalog(t *testing.T) {
	_, err := New(WithSQLite(":memory:"), WithTextProvider(fakeTextGenerator{}))
	assert.ErrorIs(t, err, ErrNoCatalog)
}

func TestNew_UnsupportedDatabaseURL(t *testing.T) {
	_, err := New(WithDatabaseURL("mysql://localhost/db"), WithTextProvider(fakeTextGenerator{}), WithTMDB("k"))
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)

	_, err = OpenHistory(WithDatabaseURL("redis://localhost:6379"))
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)
}

func TestClient_RecommendAndHistory(t *testing.T) {
	ctx := context.Background()
	gen := fakeTextGenerator{content: "```json\n" + `[
		{"title":"Inception","year":2010,"overview":"Dreams."},
		{"title":"Not A Real Movie","year":2001,"overview":"?"}
	]` + "\n```"}
	client := newTestClient(t, gen)

	req := movie.NewRequest("I want a mind-bending sci-fi movie", "Hollywood", "any")
	resp, err := client.Recommendations.Recommend(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, req.Description(), resp.Preference())
	require.Len(t, resp.Movies(), 1)
	got := resp.Movies()[0]
	assert.Equal(t, "Inception", got.Title())
	assert.Equal(t, "https://img/i.jpg", got.PosterURL())
	assert.InDelta(t, 8.3, got.Rating(), 1e-9)
	assert.Equal(t, []string{"Netflix"}, got.WatchOn())

	rows, err := client.History.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, req.Summary(), rows[0].UserInput())
}

func TestClient_ListFormat(t *testing.T) {
	client := newTestClient(t, fakeTextGenerator{content: "Inception\n"}, WithSuggestionFormat(suggestion.FormatList))

	resp, err := client.Recommendations.Recommend(context.Background(), movie.NewRequest("dreams", "Hollywood", "any"))
	require.NoError(t, err)
	assert.Len(t, resp.Movies(), 1)
}

func TestClient_UpstreamFailureIsNotStored(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, fakeTextGenerator{err: errors.New("boom")})

	_, err := client.Recommendations.Recommend(ctx, movie.NewRequest("dreams", "Hollywood", "any"))
	assert.ErrorIs(t, err, ErrUpstreamGeneration)

	count, err := client.History.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestClient_CloseTwice(t *testing.T) {
	client := newTestClient(t, fakeTextGenerator{content: "[]"})

	require.NoError(t, client.Close())
	assert.True(t, client.Closed())
	assert.ErrorIs(t, client.Close(), ErrClientClosed)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestClient_CloseRunsClosers(t *testing.T) {
	closed := false
	client := newTestClient(t, fakeTextGenerator{content: "[]"}, WithCloser(closerFunc(func() error {
		closed = true
		return nil
	})))

	require.NoError(t, client.Close())
	assert.True(t, closed)
}

func TestOpenHistory_NeedsOnlyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommendations.db")

	writer := newTestClient(t, fakeTextGenerator{content: `[{"title":"Inception","year":2010,"overview":"Dreams."}]`}, WithSQLite(path))
	_, err := writer.Recommendations.Recommend(context.Background(), movie.NewRequest("dreams", "Hollywood", "any"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader, err := OpenHistory(WithSQLite(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	assert.Nil(t, reader.Recommendations)
	rows, err := reader.History.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestOpenHistory_RequiresDatabase(t *testing.T) {
	_, err := OpenHistory()
	assert.ErrorIs(t, err, ErrNoDatabase)
}
