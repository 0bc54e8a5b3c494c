package persistence

import (
	"context"
	"errors"

	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/internal/database"
)

// ErrAlreadyStored indicates an insert of a recommendation that already has an id.
var ErrAlreadyStored = errors.New("recommendation already stored")

// RecommendationStore implements recommendation.Store using GORM.
type RecommendationStore struct {
	database.Repository[recommendation.Stored, RecommendationModel]
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(db database.Database) RecommendationStore {
	return RecommendationStore{
		Repository: database.NewRepository[recommendation.Stored, RecommendationModel](db, RecommendationMapper{}, "recommendation"),
	}
}

// Insert appends a recommendation. The database assigns the id and timestamp.
func (s RecommendationStore) Insert(ctx context.Context, rec recommendation.Stored) (recommendation.Stored, error) {
	if rec.ID() != 0 {
		return recommendation.Stored{}, ErrAlreadyStored
	}
	return s.Create(ctx, rec)
}

var _ recommendation.Store = RecommendationStore{}
