package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/moviefinder"
	"github.com/helixml/moviefinder/infrastructure/api"
	apimiddleware "github.com/helixml/moviefinder/infrastructure/api/middleware"
	"github.com/helixml/moviefinder/internal/config"
	"github.com/helixml/moviefinder/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8000)
  DATABASE_URL                 sqlite:///path, postgres://..., or mongodb://...
                               (default: sqlite:///./recommendations.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins
  ENRICHMENT_PARALLELISM       Concurrent catalog lookups per request (default: 5)

  GEMINI_API_KEY               API key for the default suggestion endpoint
  SUGGESTION_*                 Suggestion model configuration
    PROVIDER                   openai or anthropic (default: openai)
    BASE_URL                   Base URL (default: Gemini's OpenAI-compatible API)
    MODEL                      Model identifier (default: gemini-2.5-flash)
    API_KEY                    API key (default: GEMINI_API_KEY)
    TIMEOUT                    Request timeout in seconds (default: 30)
    MAX_TOKENS                 Completion token limit (default: 2048)
    TEMPERATURE                Sampling temperature (default: 0.7)
    FORMAT                     json or list (default: json)

  TMDB_*                       Movie catalog configuration
    API_KEY                    API key (required)
    BASE_URL                   Base URL (default: https://api.themoviedb.org/3)
    IMAGE_BASE_URL             Poster URL prefix (default: https://image.tmdb.org/t/p/w500)
    TIMEOUT                    Request timeout in seconds (default: 10)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8000)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Flags take precedence over env vars
	cfg = applyServeOverrides(cfg, host, port)
	if err := cfg.Validate(); err != nil {
		return err
	}

	addr := cfg.Addr()

	logger := log.Configure(cfg)
	slogger := logger.Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting moviefinder", attrs...)

	client, err := moviefinder.New(clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create moviefinder client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close moviefinder client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, cfg.CORSAllowedOrigins(), version)
	router := apiServer.Router()

	// Custom middleware MUST be added before MountRoutes
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(slogger))

	apiServer.MountRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	server := api.NewServer(addr, slogger)
	server.Router().Mount("/", router)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
