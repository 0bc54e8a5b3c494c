// Package recommendation provides the stored form of a completed
// recommendation run.
package recommendation

import (
	"time"

	"github.com/helixml/moviefinder/domain/movie"
)

// Stored is a persisted recommendation. It is written once and never updated.
type Stored struct {
	id                int64
	userInput         string
	recommendedMovies string
	timestamp         time.Time
}

// NewStored creates a Stored recommendation awaiting persistence.
// The store assigns the id and timestamp.
func NewStored(userInput, recommendedMovies string) Stored {
	return Stored{
		userInput:         userInput,
		recommendedMovies: recommendedMovies,
	}
}

// ReconstructStored recreates a Stored recommendation from persistence.
func ReconstructStored(id int64, userInput, recommendedMovies string, timestamp time.Time) Stored {
	return Stored{
		id:                id,
		userInput:         userInput,
		recommendedMovies: recommendedMovies,
		timestamp:         timestamp,
	}
}

// ID returns the store-assigned identifier.
func (s Stored) ID() int64 { return s.id }

// UserInput returns the request summary.
func (s Stored) UserInput() string { return s.userInput }

// RecommendedMovies returns the JSON text of the movie list.
func (s Stored) RecommendedMovies() string { return s.recommendedMovies }

// Timestamp returns the insertion time.
func (s Stored) Timestamp() time.Time { return s.timestamp }

// Movies decodes the stored movie list.
func (s Stored) Movies() ([]movie.MovieItem, error) {
	return movie.UnmarshalItems(s.recommendedMovies)
}
