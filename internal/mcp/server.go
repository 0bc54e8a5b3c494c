// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/internal/log"
)

// Recommender runs the recommendation pipeline for MCP tools.
type Recommender interface {
	Recommend(ctx context.Context, request movie.Request) (movie.Response, error)
}

// HistoryLister lists stored recommendations for MCP tools.
type HistoryLister interface {
	List(ctx context.Context) ([]recommendation.Stored, error)
}

// Server wraps the MCP server with the recommendation tools.
type Server struct {
	mcpServer   *server.MCPServer
	recommender Recommender
	history     HistoryLister
	version     string
	logger      *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(recommender Recommender, history HistoryLister, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		recommender: recommender,
		history:     history,
		version:     version,
		logger:      logger,
	}

	mcpServer := server.NewMCPServer(
		"moviefinder",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	recommendTool := mcp.NewTool("recommend_movies",
		mcp.WithDescription("Suggest up to five movies matching a free-text preference, with poster, rating and streaming providers"),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the user feels like watching, in their own words"),
		),
		mcp.WithString("movie_type",
			mcp.Required(),
			mcp.Description("Film industry or category, e.g. Hollywood, Bollywood, South Indian"),
		),
		mcp.WithString("release_pref",
			mcp.Required(),
			mcp.Description("Release preference, e.g. new, old, any"),
		),
	)
	mcpServer.AddTool(recommendTool, s.handleRecommend)

	listTool := mcp.NewTool("list_recommendations",
		mcp.WithDescription("List every stored recommendation, oldest first"),
	)
	mcpServer.AddTool(listTool, s.handleList)

	versionTool := mcp.NewTool("get_version",
		mcp.WithDescription("Get the moviefinder server version"),
	)
	mcpServer.AddTool(versionTool, s.handleVersion)
}

type recommendResult struct {
	Preference string          `json:"preference"`
	Movies     []movie.ItemJSON `json:"movies"`
}

func (s *Server) handleRecommend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := make([]string, 0, 3)
	for _, name := range []string{"description", "movie_type", "release_pref"} {
		v, err := request.RequireString(name)
		if err != nil {
			return mcp.NewToolResultError(name + " is required"), nil
		}
		args = append(args, v)
	}

	req := movie.NewRequest(args[0], args[1], args[2])
	if err := req.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctx = log.WithCorrelationID(ctx, uuid.NewString())
	logger := s.logger.With(slog.String("correlation_id", log.CorrelationID(ctx)))

	start := time.Now()
	resp, err := s.recommender.Recommend(ctx, req)
	if err != nil {
		logger.Error("recommend_movies failed", slog.Any("error", err))
		return mcp.NewToolResultError(toolMessage(err)), nil
	}
	logger.Info("recommend_movies completed",
		slog.Int("movies", len(resp.Movies())),
		slog.Duration("duration", time.Since(start)),
	)

	return jsonResult(recommendResult{
		Preference: resp.Preference(),
		Movies:     movie.ItemsToJSON(resp.Movies()),
	})
}

type storedResult struct {
	ID                int64            `json:"id"`
	UserInput         string           `json:"user_input"`
	RecommendedMovies []movie.ItemJSON `json:"recommended_movies"`
	Timestamp         time.Time        `json:"timestamp"`
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.history.List(ctx)
	if err != nil {
		s.logger.Error("failed to list recommendations", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list recommendations: %v", err)), nil
	}

	results := make([]storedResult, len(rows))
	for i, row := range rows {
		items, err := row.Movies()
		if err != nil {
			s.logger.Warn("stored recommendation has unreadable movies", slog.Int64("id", row.ID()), slog.Any("error", err))
		}
		results[i] = storedResult{
			ID:                row.ID(),
			UserInput:         row.UserInput(),
			RecommendedMovies: movie.ItemsToJSON(items),
			Timestamp:         row.Timestamp(),
		}
	}

	return jsonResult(results)
}

func (s *Server) handleVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

// toolMessage turns pipeline failures into messages an agent can act on.
func toolMessage(err error) string {
	switch {
	case errors.Is(err, movie.ErrNoSuggestions):
		return "no movie suggestions were produced; try a different description"
	case errors.Is(err, movie.ErrNoDetailsResolved):
		return "none of the suggested movies could be found in the catalog"
	case errors.Is(err, movie.ErrMalformedSuggestion):
		return "the suggestion service returned an unexpected response"
	case errors.Is(err, movie.ErrUpstreamGeneration):
		return "the suggestion service is unavailable"
	default:
		return fmt.Sprintf("recommendation failed: %v", err)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
