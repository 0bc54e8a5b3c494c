package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	// Registers the OpenAPI document with swag.
	_ "github.com/helixml/moviefinder/docs"
)

// DocsRouter serves Swagger UI and the OpenAPI document.
type DocsRouter struct {
	specURL string
}

// NewDocsRouter creates a documentation router serving the OpenAPI document at specURL.
func NewDocsRouter(specURL string) *DocsRouter {
	return &DocsRouter{specURL: specURL}
}

// Routes returns the chi router for documentation endpoints.
func (d *DocsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, strings.TrimSuffix(r.URL.Path, "/")+"/index.html", http.StatusMovedPermanently)
	})
	router.Get("/*", httpSwagger.Handler(
		httpSwagger.URL(d.specURL),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return router
}
