package persistence

import (
	"github.com/helixml/moviefinder/domain/recommendation"
)

// RecommendationMapper maps between domain Stored and persistence RecommendationModel.
type RecommendationMapper struct{}

// ToDomain converts a RecommendationModel to a domain Stored.
func (m RecommendationMapper) ToDomain(e RecommendationModel) recommendation.Stored {
	return recommendation.ReconstructStored(
		e.ID,
		e.UserInput,
		e.RecommendedMovies,
		e.Timestamp,
	)
}

// ToModel converts a domain Stored to a RecommendationModel.
func (m RecommendationMapper) ToModel(s recommendation.Stored) RecommendationModel {
	return RecommendationModel{
		ID:                s.ID(),
		UserInput:         s.UserInput(),
		RecommendedMovies: s.RecommendedMovies(),
		Timestamp:         s.Timestamp(),
	}
}
