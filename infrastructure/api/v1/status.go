package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/moviefinder/infrastructure/api/middleware"
	"github.com/helixml/moviefinder/infrastructure/api/v1/dto"
)

// RootMessage is returned by GET /.
const RootMessage = "Smart Movie Finder API is running!"

// StatusRouter serves the liveness endpoints.
type StatusRouter struct{}

// NewStatusRouter creates a new StatusRouter.
func NewStatusRouter() *StatusRouter {
	return &StatusRouter{}
}

// Routes returns the chi router for status endpoints.
func (s *StatusRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", s.Root)
	router.Get("/health", s.Health)
	router.Get("/healthz", s.Health)

	return router
}

// Root handles GET /.
//
//	@Summary		API status message
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	dto.MessageResponse
//	@Router			/ [get]
func (s *StatusRouter) Root(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: RootMessage})
}

// Health handles GET /health and GET /healthz.
//
//	@Summary		Health check
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	dto.StatusResponse
//	@Router			/health [get]
func (s *StatusRouter) Health(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: "healthy"})
}
