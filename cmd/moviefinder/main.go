// Package main is the entry point for the moviefinder CLI.
//
//	@title			Smart Movie Finder API
//	@version		1.0
//	@description	Recommends movies for a free-text preference using an LLM and enriches them with TMDB details and streaming providers.
//	@BasePath		/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/moviefinder/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moviefinder",
		Short: "Smart Movie Finder server",
		Long:  `moviefinder recommends movies from a free-text description. An LLM suggests titles and TMDB supplies posters, ratings and streaming providers.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
