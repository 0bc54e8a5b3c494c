package movie

import "errors"

// Pipeline-level failures surfaced to callers.
var (
	// ErrUpstreamGeneration indicates the suggestion upstream was unreachable or returned an error.
	ErrUpstreamGeneration = errors.New("suggestion upstream error")

	// ErrMalformedSuggestion indicates the suggestion response did not have the expected shape.
	ErrMalformedSuggestion = errors.New("malformed suggestion response")

	// ErrNoSuggestions indicates the suggestion stage produced no titles.
	ErrNoSuggestions = errors.New("no suggestions")

	// ErrNoDetailsResolved indicates no suggested title could be resolved in the catalog.
	ErrNoDetailsResolved = errors.New("no details resolved")

	// ErrValidation indicates an invalid request.
	ErrValidation = errors.New("validation error")
)

// Failures recovered locally and never surfaced to callers.
var (
	// ErrCatalogLookup indicates a title search failed.
	ErrCatalogLookup = errors.New("catalog lookup failed")

	// ErrProviderLookup indicates a watch-provider lookup failed.
	ErrProviderLookup = errors.New("provider lookup failed")

	// ErrPersistence indicates the recommendation could not be stored.
	ErrPersistence = errors.New("persistence failed")
)
