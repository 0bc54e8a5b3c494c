package e2e_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/helixml/moviefinder"
	"github.com/helixml/moviefinder/infrastructure/api"
	apimiddleware "github.com/helixml/moviefinder/infrastructure/api/middleware"
	"github.com/helixml/moviefinder/infrastructure/catalog"
	"github.com/helixml/moviefinder/infrastructure/provider"
)

// fakeLLM mimics an OpenAI-compatible chat completions endpoint.
type fakeLLM struct {
	mu      sync.Mutex
	content string
	status  int
	prompts []string
}

func (f *fakeLLM) reply(status int, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.content = content
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeLLM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	for _, m := range body.Messages {
		f.prompts = append(f.prompts, m.Content)
	}
	status, content := f.status, f.content
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gemini-2.5-flash",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	})
}

// tmdbMovie is a catalog entry served by fakeTMDB.
type tmdbMovie struct {
	id        int64
	title     string
	overview  string
	poster    string
	release   string
	rating    float64
	providers map[string][]string
}

// fakeTMDB serves /search/movie and /movie/{id}/watch/providers.
func fakeTMDB(t *testing.T, movies ...tmdbMovie) *httptest.Server {
	t.Helper()
	byTitle := map[string]tmdbMovie{}
	byPath := map[string]tmdbMovie{}
	for _, m := range movies {
		byTitle[strings.ToLower(m.title)] = m
		byPath["/movie/"+itoa(m.id)+"/watch/providers"] = m
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("api_key") != "tmdb-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path == "/search/movie" {
			results := []map[string]any{}
			if m, ok := byTitle[strings.ToLower(r.URL.Query().Get("query"))]; ok {
				results = append(results, map[string]any{
					"id":           m.id,
					"title":        m.title,
					"overview":     m.overview,
					"poster_path":  m.poster,
					"release_date": m.release,
					"vote_average": m.rating,
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
			return
		}
		if m, ok := byPath[r.URL.Path]; ok {
			regions := map[string]any{}
			for region, names := range m.providers {
				flatrate := make([]map[string]string, len(names))
				for i, n := range names {
					flatrate[i] = map[string]string{"provider_name": n}
				}
				regions[region] = map[string]any{"flatrate": flatrate}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": m.id, "results": regions})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestServer runs the full HTTP stack against fake upstreams.
type TestServer struct {
	t          *testing.T
	llm        *fakeLLM
	httpServer *httptest.Server
}

// NewTestServer wires a client with real providers pointed at fake upstreams.
func NewTestServer(t *testing.T, movies ...tmdbMovie) *TestServer {
	t.Helper()

	llm := &fakeLLM{status: http.StatusOK, content: "[]"}
	llmServer := httptest.NewServer(llm)
	t.Cleanup(llmServer.Close)
	tmdb := fakeTMDB(t, movies...)

	client, err := moviefinder.New(
		moviefinder.WithSQLite(filepath.Join(t.TempDir(), "e2e.db")),
		moviefinder.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:    "llm-key",
			BaseURL:   llmServer.URL,
			ChatModel: "gemini-2.5-flash",
		}),
		moviefinder.WithTMDBConfig(catalog.Config{
			APIKey:       "tmdb-key",
			BaseURL:      tmdb.URL,
			ImageBaseURL: "https://image.test/w500",
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	apiServer := api.NewAPIServer(client, []string{"http://localhost:5173"}, "e2e")
	router := apiServer.Router()
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(client.Logger()))
	apiServer.MountRoutes()

	httpServer := httptest.NewServer(router)
	t.Cleanup(httpServer.Close)

	return &TestServer{t: t, llm: llm, httpServer: httpServer}
}

// POST sends a JSON body and returns the response.
func (s *TestServer) POST(path string, body any) *http.Response {
	s.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(s.t, err)
	resp, err := http.Post(s.httpServer.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// GET performs a request and returns the response.
func (s *TestServer) GET(path string) *http.Response {
	s.t.Helper()
	resp, err := http.Get(s.httpServer.URL + path)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// decode reads a JSON response body into v.
func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

func itoa(n int64) string {
	data, _ := json.Marshal(n)
	return string(data)
}
