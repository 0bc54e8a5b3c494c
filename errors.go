package moviefinder

import (
	"errors"

	"github.com/helixml/moviefinder/application/service"
	"github.com/helixml/moviefinder/domain/movie"
)

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no record store was configured.
	ErrNoDatabase = errors.New("moviefinder: no database configured")

	// ErrNoTextProvider indicates no text generation provider was configured.
	ErrNoTextProvider = errors.New("moviefinder: no text provider configured")

	// ErrNoCatalog indicates no movie catalog was configured.
	ErrNoCatalog = errors.New("moviefinder: no catalog configured")

	// ErrUnsupportedDatabase indicates the database URL names no supported backend.
	ErrUnsupportedDatabase = errors.New("moviefinder: unsupported database url")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed
)

// Pipeline errors returned by Client.Recommendations.
var (
	ErrUpstreamGeneration  = movie.ErrUpstreamGeneration
	ErrMalformedSuggestion = movie.ErrMalformedSuggestion
	ErrNoSuggestions       = movie.ErrNoSuggestions
	ErrNoDetailsResolved   = movie.ErrNoDetailsResolved
	ErrValidation          = movie.ErrValidation
)
