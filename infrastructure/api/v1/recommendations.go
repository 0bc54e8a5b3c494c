// Package v1 provides the HTTP routers of the recommendation API.
package v1

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/helixml/moviefinder"
	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/infrastructure/api/middleware"
	"github.com/helixml/moviefinder/infrastructure/api/v1/dto"
	"github.com/helixml/moviefinder/internal/validation"
)

// RecommendationsRouter handles the recommendation endpoints.
type RecommendationsRouter struct {
	client *moviefinder.Client
	logger *slog.Logger
}

// NewRecommendationsRouter creates a new RecommendationsRouter.
func NewRecommendationsRouter(client *moviefinder.Client) *RecommendationsRouter {
	return &RecommendationsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for recommendation endpoints.
func (r *RecommendationsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/recommend", r.Recommend)
	router.Get("/recommendations", r.List)

	return router
}

// Recommend handles POST /recommend.
//
//	@Summary		Recommend movies
//	@Description	Suggests up to five movies for a free-text preference and enriches them with catalog details and streaming providers
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.RecommendRequest	true	"Recommendation request"
//	@Success		200		{object}	dto.RecommendResponse
//	@Failure		404		{object}	middleware.ErrorResponse
//	@Failure		422		{object}	middleware.ValidationErrorResponse
//	@Failure		500		{object}	middleware.ErrorResponse
//	@Router			/recommend [post]
func (r *RecommendationsRouter) Recommend(w http.ResponseWriter, req *http.Request) {
	body, err := decodeRecommendRequest(req.Body)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	request := movie.NewRequest(body.Description, body.MovieType, body.ReleasePref)
	response, err := r.client.Recommendations.Recommend(req.Context(), request)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.RecommendResponse{
		Preference: response.Preference(),
		Movies:     moviesToDTO(response.Movies()),
	})
}

// List handles GET /recommendations.
//
//	@Summary		List stored recommendations
//	@Description	Returns every stored recommendation, oldest first
//	@Tags			recommendations
//	@Produce		json
//	@Success		200	{array}		dto.RecommendationRecord
//	@Failure		500	{object}	middleware.ErrorResponse
//	@Router			/recommendations [get]
func (r *RecommendationsRouter) List(w http.ResponseWriter, req *http.Request) {
	rows, err := r.client.History.List(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	records := make([]dto.RecommendationRecord, len(rows))
	for i, row := range rows {
		records[i] = r.recordToDTO(row)
	}
	middleware.WriteJSON(w, http.StatusOK, records)
}

func (r *RecommendationsRouter) recordToDTO(row recommendation.Stored) dto.RecommendationRecord {
	items, err := row.Movies()
	if err != nil {
		r.logger.Warn("stored recommendation has unreadable movies",
			slog.Int64("id", row.ID()),
			slog.Any("error", err),
		)
	}
	return dto.RecommendationRecord{
		ID:                row.ID(),
		UserInput:         row.UserInput(),
		RecommendedMovies: moviesToDTO(items),
		Timestamp:         row.Timestamp(),
	}
}

// decodeRecommendRequest decodes and validates the request body. Every
// failure is a *validation.RequestValidationError.
func decodeRecommendRequest(body io.Reader) (dto.RecommendRequest, error) {
	var request dto.RecommendRequest
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		if errors.Is(err, io.EOF) {
			return request, validation.NewRequestValidationError(
				validation.NewValidationError("", "required", "Field required"),
			)
		}
		return request, validation.NewRequestValidationError(
			validation.NewValidationError("", "json", "JSON decode error: "+err.Error()),
		)
	}
	if verr := validation.ValidateStruct(request); verr != nil {
		return request, verr
	}
	return request, nil
}

func moviesToDTO(items []movie.MovieItem) []dto.Movie {
	out := make([]dto.Movie, len(items))
	for i, item := range items {
		j := item.ToJSON()
		out[i] = dto.Movie{
			Title:       j.Title,
			Overview:    j.Overview,
			PosterURL:   j.PosterURL,
			ReleaseDate: j.ReleaseDate,
			Rating:      j.Rating,
			WatchOn:     j.WatchOn,
		}
	}
	return out
}
