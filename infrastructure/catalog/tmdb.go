// Package catalog provides a client for TMDB-compatible movie catalog services.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/internal/metrics"
)

// Defaults for the public TMDB API.
const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultTimeout      = 10 * time.Second
)

// Operation labels used in metrics and logs.
const (
	opSearch    = "search"
	opProviders = "providers"
)

// maxErrorBody caps how much of a failed response is read into the error.
const maxErrorBody = 512

// Config holds configuration for the TMDB client.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client implements movie.Catalog against the TMDB v3 API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	httpClient   *http.Client
	log          *slog.Logger
}

// NewClient creates a TMDB client. Every call is a single attempt bounded by
// the configured timeout.
func NewClient(cfg Config, log *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	imageBaseURL := strings.TrimRight(cfg.ImageBaseURL, "/")
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	if log == nil {
		log = slog.Default()
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		imageBaseURL: imageBaseURL,
		httpClient:   client,
		log:          log,
	}
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type providersResponse struct {
	ID      int64                     `json:"id"`
	Results map[string]regionProvider `json:"results"`
}

type regionProvider struct {
	Link     string         `json:"link"`
	Flatrate []watchService `json:"flatrate"`
}

type watchService struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

// ResolveTitle searches the catalog and takes the first result as the match.
// Zero results yield an unresolved Resolution with a nil cause.
func (c *Client) ResolveTitle(ctx context.Context, title string) movie.Resolution {
	query := url.Values{}
	query.Set("query", title)

	var resp searchResponse
	if err := c.get(ctx, "/search/movie", query, &resp); err != nil {
		metrics.RecordCatalogLookup(opSearch, metrics.LookupError)
		c.log.WarnContext(ctx, "catalog search failed", slog.String("title", title), slog.Any("error", err))
		return movie.Unresolved(fmt.Errorf("%w: search %q: %w", movie.ErrCatalogLookup, title, err))
	}

	if len(resp.Results) == 0 {
		metrics.RecordCatalogLookup(opSearch, metrics.LookupNotFound)
		c.log.InfoContext(ctx, "catalog has no match", slog.String("title", title))
		return movie.Unresolved(nil)
	}

	metrics.RecordCatalogLookup(opSearch, metrics.LookupOK)
	best := resp.Results[0]
	return movie.Resolved(movie.NewCatalogRecord(
		best.ID,
		best.Title,
		best.Overview,
		c.posterURL(best.PosterPath),
		best.ReleaseDate,
		best.VoteAverage,
	))
}

// ListProviders returns the flatrate streaming providers for a movie in the
// region chosen by movieType. When that region lists none and is not US, the
// US list from the same response is used instead.
func (c *Client) ListProviders(ctx context.Context, catalogID int64, movieType string) movie.Availability {
	region := movie.RegionFor(movieType)
	path := "/movie/" + strconv.FormatInt(catalogID, 10) + "/watch/providers"

	var resp providersResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		metrics.RecordCatalogLookup(opProviders, metrics.LookupError)
		c.log.WarnContext(ctx, "provider lookup failed",
			slog.Int64("catalog_id", catalogID),
			slog.String("region", region.String()),
			slog.Any("error", err),
		)
		return movie.Unavailable(fmt.Errorf("%w: movie %d: %w", movie.ErrProviderLookup, catalogID, err))
	}

	names := flatrateNames(resp.Results[region.String()])
	if len(names) > 0 {
		metrics.RecordCatalogLookup(opProviders, metrics.LookupOK)
		return movie.NewAvailability(region, names)
	}

	if region == movie.RegionUS {
		metrics.RecordCatalogLookup(opProviders, metrics.LookupNotFound)
		return movie.NewAvailability(region, nil)
	}

	names = flatrateNames(resp.Results[movie.RegionUS.String()])
	if len(names) == 0 {
		metrics.RecordCatalogLookup(opProviders, metrics.LookupNotFound)
		return movie.NewAvailability(movie.RegionUS, nil)
	}

	metrics.RecordCatalogLookup(opProviders, metrics.LookupFallback)
	c.log.DebugContext(ctx, "using US providers",
		slog.Int64("catalog_id", catalogID),
		slog.String("region", region.String()),
	)
	return movie.NewAvailability(movie.RegionUS, names)
}

func flatrateNames(rp regionProvider) []string {
	names := make([]string, 0, len(rp.Flatrate))
	for _, s := range rp.Flatrate {
		if s.ProviderName != "" {
			names = append(names, s.ProviderName)
		}
	}
	return names
}

func (c *Client) posterURL(path string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.imageBaseURL + path
}

// get performs a GET against the catalog and decodes a 2xx JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned when the catalog answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog returned status %d: %s", e.StatusCode, e.Body)
}

// redact strips the query string, which carries the API key, from URL errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
		}
	}
	return err
}

var _ movie.Catalog = (*Client)(nil)
