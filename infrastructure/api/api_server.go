package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixml/moviefinder"
	apimiddleware "github.com/helixml/moviefinder/infrastructure/api/middleware"
	v1 "github.com/helixml/moviefinder/infrastructure/api/v1"
	mcpinternal "github.com/helixml/moviefinder/internal/mcp"
)

// APIServer provides an HTTP API backed by a moviefinder Client.
type APIServer struct {
	client       *moviefinder.Client
	corsOrigins  []string
	version      string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// corsOrigins is the browser allow-list; version is reported by the MCP
// get_version tool.
func NewAPIServer(client *moviefinder.Client, corsOrigins []string, version string) *APIServer {
	return &APIServer{
		client:      client,
		corsOrigins: corsOrigins,
		version:     version,
		logger:      client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	router.Use(apimiddleware.Metrics)
	router.Use(apimiddleware.CORS(a.corsOrigins))

	status := v1.NewStatusRouter()
	router.Get("/", status.Root)
	router.Get("/health", status.Health)
	router.Get("/healthz", status.Health)

	recommendations := v1.NewRecommendationsRouter(a.client)
	// No Timeout middleware: a started run always completes and each
	// upstream call carries its own timeout.
	router.Post("/recommend", recommendations.Recommend)
	router.Get("/recommendations", recommendations.List)

	router.Handle("/metrics", promhttp.Handler())
	router.Mount("/docs", a.DocsRouter("/docs/doc.json").Routes())

	mcpSrv := mcpinternal.NewServer(a.client.Recommendations, a.client.History, a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

// DocsRouter returns a router for Swagger UI and the OpenAPI document.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
