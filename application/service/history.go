package service

import (
	"context"

	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/domain/repository"
)

// History provides read access to stored recommendations.
// Embeds Collection for Find/Get/Count.
type History struct {
	repository.Collection[recommendation.Stored]
}

// NewHistory creates a new History service.
func NewHistory(store recommendation.Store) *History {
	return &History{
		Collection: repository.NewCollection[recommendation.Stored](store),
	}
}

// List returns every stored recommendation, oldest first.
func (h *History) List(ctx context.Context) ([]recommendation.Stored, error) {
	return h.Find(ctx, recommendation.WithOldestFirst())
}
