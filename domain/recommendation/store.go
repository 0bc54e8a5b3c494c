package recommendation

import (
	"context"

	"github.com/helixml/moviefinder/domain/repository"
)

// Store persists recommendations. Inserts are append-only and safe for
// concurrent use.
type Store interface {
	repository.Store[Stored]
	Insert(ctx context.Context, rec Stored) (Stored, error)
}

// WithOldestFirst orders results by ascending id.
func WithOldestFirst() repository.Option {
	return repository.WithOrderAsc("id")
}

// WithNewestFirst orders results by descending id.
func WithNewestFirst() repository.Option {
	return repository.WithOrderDesc("id")
}
