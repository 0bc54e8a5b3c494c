// Package movie provides domain types for movie recommendation requests,
// LLM suggestions, catalog lookups and the enriched items returned to callers.
package movie

import (
	"fmt"
	"strings"
)

// MaxSuggestions is the number of titles requested from the suggestion stage.
const MaxSuggestions = 5

// Request is a validated recommendation request.
type Request struct {
	description string
	movieType   string
	releasePref string
}

// NewRequest creates a Request from the three caller-supplied fields.
func NewRequest(description, movieType, releasePref string) Request {
	return Request{
		description: description,
		movieType:   movieType,
		releasePref: releasePref,
	}
}

// Description returns the free-text preference, verbatim.
func (r Request) Description() string { return r.description }

// MovieType returns the region/category tag.
func (r Request) MovieType() string { return r.movieType }

// ReleasePref returns the release preference.
func (r Request) ReleasePref() string { return r.releasePref }

// Validate reports ErrValidation when any field is blank.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(r.movieType) == "" {
		missing = append(missing, "movie_type")
	}
	if strings.TrimSpace(r.releasePref) == "" {
		missing = append(missing, "release_pref")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Summary returns the human-readable form persisted alongside the results.
func (r Request) Summary() string {
	return fmt.Sprintf("Desc: %s, Type: %s, Pref: %s", r.description, r.movieType, r.releasePref)
}

// Suggestion is one candidate produced by the suggestion stage.
// Plain-list suggestions carry only a title.
type Suggestion struct {
	title    string
	year     int
	overview string
}

// NewSuggestion creates a title-only Suggestion.
func NewSuggestion(title string) Suggestion {
	return Suggestion{title: title}
}

// NewDetailedSuggestion creates a Suggestion with year and overview.
func NewDetailedSuggestion(title string, year int, overview string) Suggestion {
	return Suggestion{
		title:    title,
		year:     year,
		overview: overview,
	}
}

// Title returns the suggested title.
func (s Suggestion) Title() string { return s.title }

// Year returns the suggested release year, or 0 when not supplied.
func (s Suggestion) Year() int { return s.year }

// Overview returns the model's short overview, or empty when not supplied.
func (s Suggestion) Overview() string { return s.overview }

// MovieItem is an enriched movie as returned to callers and persisted.
type MovieItem struct {
	title       string
	overview    string
	posterURL   string
	releaseDate string
	rating      float64
	watchOn     []string
}

// NewMovieItem creates a MovieItem. Duplicate provider names are dropped,
// keeping the first occurrence.
func NewMovieItem(title, overview, posterURL, releaseDate string, rating float64, watchOn []string) MovieItem {
	return MovieItem{
		title:       title,
		overview:    overview,
		posterURL:   posterURL,
		releaseDate: releaseDate,
		rating:      rating,
		watchOn:     dedupe(watchOn),
	}
}

// NewMovieItemFromRecord builds a MovieItem from a catalog record and its
// streaming availability.
func NewMovieItemFromRecord(title string, record CatalogRecord, availability Availability) MovieItem {
	return NewMovieItem(
		title,
		record.Overview(),
		record.PosterURL(),
		record.ReleaseDate(),
		record.Rating(),
		availability.Providers(),
	)
}

// Title returns the movie title.
func (m MovieItem) Title() string { return m.title }

// Overview returns the catalog overview, or empty.
func (m MovieItem) Overview() string { return m.overview }

// PosterURL returns the absolute poster URL, or empty when absent.
func (m MovieItem) PosterURL() string { return m.posterURL }

// ReleaseDate returns the release date string, or empty.
func (m MovieItem) ReleaseDate() string { return m.releaseDate }

// Rating returns the catalog rating, or 0.
func (m MovieItem) Rating() float64 { return m.rating }

// WatchOn returns the unique streaming provider names.
func (m MovieItem) WatchOn() []string {
	out := make([]string, len(m.watchOn))
	copy(out, m.watchOn)
	return out
}

// Response is the result of a successful recommendation run.
type Response struct {
	preference string
	movies     []MovieItem
}

// NewResponse creates a Response.
func NewResponse(preference string, movies []MovieItem) Response {
	m := make([]MovieItem, len(movies))
	copy(m, movies)
	return Response{preference: preference, movies: m}
}

// Preference returns the request description the response answers.
func (r Response) Preference() string { return r.preference }

// Movies returns the enriched movies in suggestion order.
func (r Response) Movies() []MovieItem {
	m := make([]MovieItem, len(r.movies))
	copy(m, r.movies)
	return m
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
